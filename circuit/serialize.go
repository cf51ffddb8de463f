package circuit

import (
	"bufio"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// WriteTo serializes the circuit in CBOR.
func (ac *ArithmeticCircuit) WriteTo(w io.Writer) (int64, error) {
	data, err := cbor.Marshal(ac)
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ReadFrom deserializes a circuit written by WriteTo.
func (ac *ArithmeticCircuit) ReadFrom(r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	if err := cbor.Unmarshal(data, ac); err != nil {
		return int64(len(data)), err
	}
	return int64(len(data)), nil
}

// WriteText emits the gate list in a bristol-style text form:
//
//	<gate count> <signal count>
//	<input count> <output count>
//	2 1 <lh> <rh> <out> <op>
//
// The form covers the circuit topology only; names and constants are not
// included.
func (ac *ArithmeticCircuit) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	nsig := len(ac.Inputs) + len(ac.Outputs) + len(ac.Intermediates)
	if _, err := fmt.Fprintf(bw, "%d %d\n", len(ac.Gates), nsig); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(bw, "%d %d\n", len(ac.Inputs), len(ac.Outputs)); err != nil {
		return err
	}
	for _, g := range ac.Gates {
		if _, err := fmt.Fprintf(bw, "2 1 %d %d %d %s\n", g.LH, g.RH, g.Out, g.Op); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadText parses the bristol-style form produced by WriteText and returns
// the gate list together with the input and output counts.
func ReadText(r io.Reader) (gates []Gate, nbIn, nbOut int, err error) {
	br := bufio.NewReader(r)
	var nbGates, nbSignals int
	if _, err = fmt.Fscanf(br, "%d %d\n", &nbGates, &nbSignals); err != nil {
		return nil, 0, 0, fmt.Errorf("bad header: %w", err)
	}
	if _, err = fmt.Fscanf(br, "%d %d\n", &nbIn, &nbOut); err != nil {
		return nil, 0, 0, fmt.Errorf("bad io header: %w", err)
	}
	gates = make([]Gate, 0, nbGates)
	for i := 0; i < nbGates; i++ {
		var fanIn, fanOut int
		var g Gate
		var opName string
		if _, err = fmt.Fscanf(br, "%d %d %d %d %d %s\n",
			&fanIn, &fanOut, &g.LH, &g.RH, &g.Out, &opName); err != nil {
			return nil, 0, 0, fmt.Errorf("gate %d: %w", i, err)
		}
		if fanIn != 2 || fanOut != 1 {
			return nil, 0, 0, fmt.Errorf("gate %d: unsupported fan-in %d fan-out %d", i, fanIn, fanOut)
		}
		if g.Op, err = ParseGateType(opName); err != nil {
			return nil, 0, 0, fmt.Errorf("gate %d: %w", i, err)
		}
		gates = append(gates, g)
	}
	return gates, nbIn, nbOut, nil
}
