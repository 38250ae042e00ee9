// Package calc provides the calculator handle: construction of a foreign
// module instance over the shared embedded runtime, the calculate protocol
// with its caller-allocated result record, a persistent per-handle error
// string, and teardown.
//
//	c, err := calc.New(ctx, calc.Options{ModelType: "small", Device: "cpu"})
//	if err != nil {
//	    return err
//	}
//	defer c.Close(ctx)
//
//	var res calc.Result
//	c.Calculate(ctx, positions, numbers, numAtoms, &res)
//	if !res.Success {
//	    return fmt.Errorf("calculate: %s", res.ErrMsg)
//	}
//
// Failures never escape as panics or guest traps; they land in the result
// record with Success false and a bounded message.
package calc
