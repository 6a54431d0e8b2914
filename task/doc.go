// Package task defines interactive console tasks: a named function, the typed
// arguments it asks the user for, and the loop that prompts, invokes, prints
// the result and optionally repeats.
//
// Core types:
//   - Task: one invocable console action
//   - Arg: a single or list argument descriptor
//   - Coercer: the conversion strategy applied to raw input
//   - Args: the ordered mapping handed to the task function
//   - RunContext: console, clock and logger shared by every run
//
// Example usage:
//
//	sum, _ := task.New("Sum", func(args task.Args) (any, error) {
//	    a, _ := args.Int("a")
//	    b, _ := args.Int("b")
//	    return a + b, nil
//	}, task.WithArgs(
//	    task.Single("a", task.Int(), "first"),
//	    task.Single("b", task.Int(), "second"),
//	))
//	rc := task.NewRunContext(task.NewConsole(os.Stdin, os.Stdout))
//	if err := sum.Run(rc); err != nil {
//	    log.Fatal(err)
//	}
package task
