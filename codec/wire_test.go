package codec

import (
	"encoding/json"
	stderrors "errors"
	"strings"
	"testing"

	macebridge "github.com/macebridge/mace-bridge"
	"github.com/macebridge/mace-bridge/errors"
)

func TestEncodeInitRequestCarriesPrecisionTag(t *testing.T) {
	path := "/models/custom.model"
	data, err := EncodeInitRequest(macebridge.InitConfig{
		ModelPath:          &path,
		ModelType:          "large",
		Device:             "cpu",
		EnableAcceleration: true,
	})
	if err != nil {
		t.Fatalf("EncodeInitRequest: %v", err)
	}

	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("round trip: %v", err)
	}
	if m["dtype"] != macebridge.PrecisionTag {
		t.Errorf("dtype = %v, want %q", m["dtype"], macebridge.PrecisionTag)
	}
	if m["model_path"] != path {
		t.Errorf("model_path = %v", m["model_path"])
	}
	if m["enable_acceleration"] != true {
		t.Errorf("enable_acceleration = %v", m["enable_acceleration"])
	}
}

func TestEncodeInitRequestNilModelPath(t *testing.T) {
	data, err := EncodeInitRequest(macebridge.InitConfig{ModelType: "medium", Device: "cuda"})
	if err != nil {
		t.Fatalf("EncodeInitRequest: %v", err)
	}
	if !strings.Contains(string(data), `"model_path":null`) {
		t.Errorf("nil model path must encode as explicit null, got %s", data)
	}
}

func TestDecodeInitResponse(t *testing.T) {
	ok, err := DecodeInitResponse([]byte(`{"ok":true}`))
	if err != nil || !ok {
		t.Fatalf("got ok=%v err=%v", ok, err)
	}

	ok, err = DecodeInitResponse([]byte(`{"ok":false}`))
	if err != nil || ok {
		t.Fatalf("declined initializer: ok=%v err=%v", ok, err)
	}

	_, err = DecodeInitResponse([]byte(`{"ok":false,"error":"no such model"}`))
	if err == nil || !strings.Contains(err.Error(), "no such model") {
		t.Fatalf("error payload not surfaced: %v", err)
	}

	if _, err := DecodeInitResponse([]byte(`not json`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestEncodeComputeRequestExplicitNulls(t *testing.T) {
	data, err := EncodeComputeRequest(macebridge.ComputeRequest{
		Positions:     [][3]float64{{0, 0, 0}},
		AtomicNumbers: []int32{8},
	})
	if err != nil {
		t.Fatalf("EncodeComputeRequest: %v", err)
	}

	// The guest always receives the fixed four-field shape.
	s := string(data)
	for _, want := range []string{`"positions"`, `"atomic_numbers"`, `"cell":null`, `"pbc":null`} {
		if !strings.Contains(s, want) {
			t.Errorf("request %s missing %s", s, want)
		}
	}
}

func TestDecodeComputeResponse(t *testing.T) {
	out, err := DecodeComputeResponse([]byte(`{"energy":-14.17,"forces":[[0,0,1],[0,1,0],[1,0,0]]}`))
	if err != nil {
		t.Fatalf("DecodeComputeResponse: %v", err)
	}
	if out.Energy != -14.17 {
		t.Errorf("energy = %v", out.Energy)
	}
	if len(out.Forces) != 3 || out.Forces[2] != [3]float64{1, 0, 0} {
		t.Errorf("forces = %v", out.Forces)
	}
}

func TestDecodeComputeResponseErrorPayload(t *testing.T) {
	_, err := DecodeComputeResponse([]byte(`{"error":"MACE not initialized"}`))
	if err == nil {
		t.Fatal("expected guest error")
	}
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseCompute, Kind: errors.KindGuestError}) {
		t.Errorf("err = %v, want guest_error", err)
	}
	if !strings.Contains(err.Error(), "MACE not initialized") {
		t.Errorf("message lost: %v", err)
	}
}

func TestDecodeComputeResponseMissingKeys(t *testing.T) {
	if _, err := DecodeComputeResponse([]byte(`{"forces":[[0,0,0]]}`)); err == nil {
		t.Fatal("expected error for missing energy")
	}
	if _, err := DecodeComputeResponse([]byte(`{"energy":1.5}`)); err == nil {
		t.Fatal("expected error for missing forces")
	}
}
