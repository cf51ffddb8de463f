// Package circuit provides the append-only store an elaboration writes into,
// and the finalized arithmetic circuit artifact: typed signal wires, shared
// constants and fan-in-2 gates over them.
package circuit

import "fmt"

// AGateType enumerates the supported arithmetic gate operations.
type AGateType int

const (
	AAdd AGateType = iota
	ASub
	AMul
	ADiv
	AIDiv
	APow
	AMod
	AShiftL
	AShiftR
	ABitAnd
	ABitOr
	ABitXor
	ABitNot
	ALogicAnd
	ALogicOr
	ALogicNot
	ALt
	ALeq
	AGt
	AGeq
	AEqualB
	ANeq
	// AId identifies two signals. It is part of the operation set for
	// implementations that wire connections with identity gates; this
	// package unifies signal ids instead and never emits it.
	AId
)

var gateTypeNames = [...]string{
	AAdd:      "AAdd",
	ASub:      "ASub",
	AMul:      "AMul",
	ADiv:      "ADiv",
	AIDiv:     "AIDiv",
	APow:      "APow",
	AMod:      "AMod",
	AShiftL:   "AShiftL",
	AShiftR:   "AShiftR",
	ABitAnd:   "ABitAnd",
	ABitOr:    "ABitOr",
	ABitXor:   "ABitXor",
	ABitNot:   "ABitNot",
	ALogicAnd: "ALogicAnd",
	ALogicOr:  "ALogicOr",
	ALogicNot: "ALogicNot",
	ALt:       "ALt",
	ALeq:      "ALeq",
	AGt:       "AGt",
	AGeq:      "AGeq",
	AEqualB:   "AEqualB",
	ANeq:      "ANeq",
	AId:       "AId",
}

func (t AGateType) String() string {
	if int(t) < len(gateTypeNames) {
		return gateTypeNames[t]
	}
	return fmt.Sprintf("AGateType(%d)", int(t))
}

// ParseGateType is the inverse of String.
func ParseGateType(s string) (AGateType, error) {
	for i, name := range gateTypeNames {
		if name == s {
			return AGateType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown gate type %q", s)
}

// MarshalText implements encoding.TextMarshaler so gates serialize with
// operation names rather than enum values.
func (t AGateType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *AGateType) UnmarshalText(b []byte) error {
	v, err := ParseGateType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Gate connects two operand signals to one fresh output signal.
type Gate struct {
	Op  AGateType `json:"op"`
	LH  int       `json:"lh_in"`
	RH  int       `json:"rh_in"`
	Out int       `json:"out"`
}
