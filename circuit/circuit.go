package circuit

import (
	"math/big"
)

// SignalRef pairs a canonical signal id with its diagnostic name.
type SignalRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ConstantRef pairs a constant signal id with its literal value.
type ConstantRef struct {
	ID    int      `json:"id"`
	Value *big.Int `json:"value"`
}

// ArithmeticCircuit is the finalized compilation artifact. The gate list is
// in emission order; all ids are canonical.
type ArithmeticCircuit struct {
	Inputs        []SignalRef    `json:"inputs"`
	Outputs       []SignalRef    `json:"outputs"`
	Intermediates []SignalRef    `json:"intermediates"`
	Constants     []ConstantRef  `json:"constants"`
	Gates         []Gate         `json:"gates"`
	Names         map[string]int `json:"names"`
}

// SignalID resolves a qualified signal name, for diagnostics and tests.
func (ac *ArithmeticCircuit) SignalID(name string) (int, bool) {
	id, ok := ac.Names[name]
	return id, ok
}

// constantValue returns the literal bound to id, if any.
func (ac *ArithmeticCircuit) constantValue(id int) *big.Int {
	for _, c := range ac.Constants {
		if c.ID == id {
			return c.Value
		}
	}
	return nil
}

// PruneZeroAdd removes addition gates whose one operand is the literal zero,
// identifying their output with the other operand. Later gates and the name
// map are rewritten accordingly.
func (ac *ArithmeticCircuit) PruneZeroAdd() {
	remap := make(map[int]int)
	resolve := func(id int) int {
		for {
			n, ok := remap[id]
			if !ok {
				return id
			}
			id = n
		}
	}

	kept := ac.Gates[:0]
	for _, g := range ac.Gates {
		g.LH = resolve(g.LH)
		g.RH = resolve(g.RH)
		if g.Op == AAdd {
			lz := ac.constantValue(g.LH)
			rz := ac.constantValue(g.RH)
			if lz != nil && lz.Sign() == 0 {
				remap[g.Out] = g.RH
				continue
			}
			if rz != nil && rz.Sign() == 0 {
				remap[g.Out] = g.LH
				continue
			}
		}
		kept = append(kept, g)
	}
	ac.Gates = kept

	for i := range ac.Outputs {
		ac.Outputs[i].ID = resolve(ac.Outputs[i].ID)
	}
	for i := range ac.Intermediates {
		ac.Intermediates[i].ID = resolve(ac.Intermediates[i].ID)
	}
	for name, id := range ac.Names {
		ac.Names[name] = resolve(id)
	}
}

// SignalReport describes one external signal of the circuit.
type SignalReport struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Value *big.Int `json:"value,omitempty"`
}

// CircuitReport summarizes the external interface of the circuit.
type CircuitReport struct {
	Inputs  []SignalReport `json:"inputs"`
	Outputs []SignalReport `json:"outputs"`
}

// Report returns the input/output summary of the circuit.
func (ac *ArithmeticCircuit) Report() *CircuitReport {
	rep := &CircuitReport{}
	for _, in := range ac.Inputs {
		rep.Inputs = append(rep.Inputs, SignalReport{
			ID:    in.ID,
			Name:  in.Name,
			Value: ac.constantValue(in.ID),
		})
	}
	for _, out := range ac.Outputs {
		rep.Outputs = append(rep.Outputs, SignalReport{
			ID:    out.ID,
			Name:  out.Name,
			Value: ac.constantValue(out.ID),
		})
	}
	return rep
}
