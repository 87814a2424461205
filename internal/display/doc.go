// Package display provides terminal UI helpers for the delegate CLI:
// yellow warning blocks for validation problems and a step counter for
// multi-file lead loading.
//
//	if w, ok := display.WarnValidation("Report needs attention", result); ok {
//		w.Display(os.Stderr)
//	}
//
// All functions write to an io.Writer so output can be captured in tests.
package display
