package codec

import (
	"encoding/json"

	macebridge "github.com/macebridge/mace-bridge"
	"github.com/macebridge/mace-bridge/errors"
)

// Wire shapes of the guest contract. Field order and names are fixed; the
// guest binary is built against them. Absent cell and pbc are encoded as
// explicit JSON nulls, never omitted, so the compute entry point always
// sees the same four fields.

type initRequest struct {
	ModelPath          *string `json:"model_path"`
	ModelType          string  `json:"model_type"`
	Device             string  `json:"device"`
	EnableAcceleration bool    `json:"enable_acceleration"`
	Dtype              string  `json:"dtype"`
}

type initResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type computeRequest struct {
	Positions     [][3]float64   `json:"positions"`
	AtomicNumbers []int32        `json:"atomic_numbers"`
	Cell          *[3][3]float64 `json:"cell"`
	PBC           *[3]bool       `json:"pbc"`
}

type computeResponse struct {
	Energy *float64     `json:"energy"`
	Forces [][3]float64 `json:"forces"`
	Error  string       `json:"error,omitempty"`
}

// EncodeInitRequest serializes the initializer arguments, tagging them with
// the fixed numeric precision.
func EncodeInitRequest(cfg macebridge.InitConfig) ([]byte, error) {
	data, err := json.Marshal(initRequest{
		ModelPath:          cfg.ModelPath,
		ModelType:          cfg.ModelType,
		Device:             cfg.Device,
		EnableAcceleration: cfg.EnableAcceleration,
		Dtype:              macebridge.PrecisionTag,
	})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseMarshal, errors.KindInvalidInput, err, "encode init request")
	}
	return data, nil
}

// DecodeInitResponse interprets the initializer's answer. An error payload
// surfaces as a guest_error; a plain false means the guest declined.
func DecodeInitResponse(data []byte) (bool, error) {
	var resp initResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return false, errors.Decode(errors.PhaseInit, "decode init response", err)
	}
	if resp.Error != "" {
		return false, errors.GuestError(errors.PhaseInit, resp.Error)
	}
	return resp.OK, nil
}

// EncodeComputeRequest serializes a compute request in the fixed four-field
// shape.
func EncodeComputeRequest(req macebridge.ComputeRequest) ([]byte, error) {
	data, err := json.Marshal(computeRequest{
		Positions:     req.Positions,
		AtomicNumbers: req.AtomicNumbers,
		Cell:          req.Cell,
		PBC:           req.PBC,
	})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseMarshal, errors.KindInvalidInput, err, "encode compute request")
	}
	return data, nil
}

// DecodeComputeResponse extracts energy and forces from the keyed response.
func DecodeComputeResponse(data []byte) (*macebridge.ComputeResult, error) {
	var resp computeResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, errors.Decode(errors.PhaseCompute, "decode compute response", err)
	}
	if resp.Error != "" {
		return nil, errors.GuestError(errors.PhaseCompute, resp.Error)
	}
	if resp.Energy == nil {
		return nil, errors.Decode(errors.PhaseCompute, `response missing "energy"`, nil)
	}
	if resp.Forces == nil {
		return nil, errors.Decode(errors.PhaseCompute, `response missing "forces"`, nil)
	}

	return &macebridge.ComputeResult{
		Energy: *resp.Energy,
		Forces: resp.Forces,
	}, nil
}
