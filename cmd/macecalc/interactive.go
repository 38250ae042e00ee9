package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/macebridge/mace-bridge/calc"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type modelState int

const (
	stateLoading modelState = iota
	stateInputArgs
	stateShowResult
)

var fieldLabels = []string{
	"Positions (x,y,z; x,y,z; ...)",
	"Atomic numbers (Z0,Z1,...)",
	"Cell, 9 values (empty = non-periodic)",
	"PBC flags (e.g. 1,1,1)",
}

type interactiveModel struct {
	err      error
	calc     *calc.Calculator
	opts     calc.Options
	result   string
	inputs   []textinput.Model
	focusIdx int
	state    modelState
}

type loadedMsg struct {
	err  error
	calc *calc.Calculator
}

type calcResultMsg struct {
	err error
	res calc.Result
}

func newInteractiveModel(opts calc.Options) *interactiveModel {
	inputs := make([]textinput.Model, len(fieldLabels))
	for i := range inputs {
		ti := textinput.New()
		ti.CharLimit = 512
		ti.Width = 60
		inputs[i] = ti
	}
	inputs[0].Focus()

	return &interactiveModel{
		opts:   opts,
		inputs: inputs,
		state:  stateLoading,
	}
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadCalculator
}

func (m *interactiveModel) loadCalculator() tea.Msg {
	c, err := calc.New(context.Background(), m.opts)
	return loadedMsg{calc: c, err: err}
}

func (m *interactiveModel) runCalculation() tea.Cmd {
	posStr := m.inputs[0].Value()
	numStr := m.inputs[1].Value()
	cellStr := strings.TrimSpace(m.inputs[2].Value())
	pbcStr := strings.TrimSpace(m.inputs[3].Value())

	return func() tea.Msg {
		ctx := context.Background()

		pos, err := parseFloats(strings.ReplaceAll(posStr, ";", ","))
		if err != nil {
			return calcResultMsg{err: fmt.Errorf("positions: %w", err)}
		}
		nums, err := parseInts(numStr)
		if err != nil {
			return calcResultMsg{err: fmt.Errorf("numbers: %w", err)}
		}

		var res calc.Result
		if cellStr != "" {
			cellVals, err := parseFloats(cellStr)
			if err != nil {
				return calcResultMsg{err: fmt.Errorf("cell: %w", err)}
			}
			flags := [3]bool{true, true, true}
			if pbcStr != "" {
				fv, err := parseInts(pbcStr)
				if err != nil || len(fv) != 3 {
					return calcResultMsg{err: fmt.Errorf("pbc: want 3 flags")}
				}
				flags = [3]bool{fv[0] != 0, fv[1] != 0, fv[2] != 0}
			}
			m.calc.CalculatePeriodic(ctx, pos, nums, len(nums), cellVals, flags, &res)
		} else {
			m.calc.Calculate(ctx, pos, nums, len(nums), &res)
		}
		return calcResultMsg{res: res}
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.calc = msg.calc
		m.state = stateInputArgs
		return m, textinput.Blink

	case calcResultMsg:
		m.state = stateShowResult
		if msg.err != nil {
			m.result = errorStyle.Render(msg.err.Error())
		} else if !msg.res.Success {
			m.result = errorStyle.Render(msg.res.ErrMsg)
		} else {
			var b strings.Builder
			fmt.Fprintf(&b, "Energy: %.6f eV\n\n", msg.res.Energy)
			for i := 0; i < msg.res.NumAtoms; i++ {
				fmt.Fprintf(&b, "%3d  %12.6f %12.6f %12.6f\n",
					i, msg.res.Forces[i*3], msg.res.Forces[i*3+1], msg.res.Forces[i*3+2])
			}
			m.result = resultStyle.Render(b.String())
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			if m.state == stateShowResult {
				m.state = stateInputArgs
				m.result = ""
				return m, textinput.Blink
			}
			if m.focusIdx == len(m.inputs)-1 {
				return m, m.runCalculation()
			}
			m.nextFocus()
			return m, textinput.Blink
		case "tab", "down":
			if m.state == stateInputArgs {
				m.nextFocus()
				return m, textinput.Blink
			}
		case "shift+tab", "up":
			if m.state == stateInputArgs {
				m.prevFocus()
				return m, textinput.Blink
			}
		}
	}

	if m.state == stateInputArgs {
		var cmd tea.Cmd
		m.inputs[m.focusIdx], cmd = m.inputs[m.focusIdx].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) nextFocus() {
	m.inputs[m.focusIdx].Blur()
	m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
	m.inputs[m.focusIdx].Focus()
}

func (m *interactiveModel) prevFocus() {
	m.inputs[m.focusIdx].Blur()
	m.focusIdx = (m.focusIdx - 1 + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focusIdx].Focus()
}

func (m *interactiveModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("macecalc"))
	b.WriteString("\n\n")

	switch m.state {
	case stateLoading:
		b.WriteString("Loading foreign module...\n")
	case stateInputArgs:
		for i, in := range m.inputs {
			b.WriteString(labelStyle.Render(fieldLabels[i]))
			b.WriteString("\n")
			b.WriteString(in.View())
			b.WriteString("\n\n")
		}
		b.WriteString(helpStyle.Render("tab: next field · enter on last field: calculate · esc: quit"))
	case stateShowResult:
		b.WriteString(m.result)
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter: new calculation · esc: quit"))
	}
	b.WriteString("\n")
	return b.String()
}

func runInteractive(opts calc.Options) error {
	m := newInteractiveModel(opts)
	p := tea.NewProgram(m)
	if _, err := p.Run(); err != nil {
		return err
	}
	if m.calc != nil {
		_ = m.calc.Close(context.Background())
	}
	return m.err
}
