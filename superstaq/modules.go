package superstaq

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/HershLalwani/qstaq/serialization"
)

// Well-known module names. Device payloads that need one of these are only
// decoded when a Decoder is registered under that name with WithModule.
const (
	// ModuleQtrl decodes the AQT control-stack state ("state_jp") into a pulse sequence.
	ModuleQtrl = "qtrl"
	// ModulePulser decodes neutral atom pulse schedules.
	ModulePulser = "pulser"
)

// Decoder turns one device payload into the caller's representation. raw is the
// JSON value left after undoing the transport encoding.
type Decoder func(raw []byte) (any, error)

type modules map[string]Decoder

func (m modules) lookup(name string) (Decoder, bool) {
	dec, ok := m[name]
	return dec, ok && dec != nil
}

// decodeEach undoes the transport encoding of a JSON array and runs dec on every element.
func decodeEach(data string, dec Decoder) ([]any, error) {
	var raws []jsoniter.RawMessage
	if err := serialization.Deserialize(data, &raws); err != nil {
		return nil, err
	}
	out := make([]any, 0, len(raws))
	for i, raw := range raws {
		v, err := dec(raw)
		if err != nil {
			return nil, errors.Wrapf(err, "element %d", i)
		}
		out = append(out, v)
	}
	return out, nil
}

// decodeOne undoes the transport encoding of a single JSON value and runs dec on it.
func decodeOne(data string, dec Decoder) (any, error) {
	var raw jsoniter.RawMessage
	if err := serialization.Deserialize(data, &raw); err != nil {
		return nil, err
	}
	return dec(raw)
}

// genericDecoder decodes into plain maps, slices and numbers.
func genericDecoder(raw []byte) (any, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
