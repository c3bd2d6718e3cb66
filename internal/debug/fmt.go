package debug

import "fmt"

// Formatter is a fmt.Formatter implementation that just calls a function.
type Formatter func(s fmt.State)

func (f Formatter) Format(s fmt.State, verb rune) {
	if verb != 'v' {
		_, _ = fmt.Fprintf(s, "%%%c(%T)", verb, f)
		return
	}
	f(s)
}

func (f Formatter) String() string { return fmt.Sprint(f) }

// Dict pretty-prints the given entries as a dictionary, with an optional
// prefix. Nil values are omitted; this lets Log's callers pass along
// optional fields without having to build the kv list conditionally.
func Dict(prefix any, kv ...any) Formatter {
	return Formatter(func(s fmt.State) {
		if len(kv)%2 != 0 {
			panic("dbg: length must be divisible by 2")
		}

		if prefix == nil {
			prefix = ""
		}

		first := true
		_, _ = fmt.Fprintf(s, "%v{", prefix)
		for i := 0; i < len(kv)/2; i++ {
			k := kv[2*i]
			v := kv[2*i+1]
			if v == nil {
				continue
			}

			if !first {
				_, _ = fmt.Fprint(s, ", ")
			}
			first = false
			_, _ = fmt.Fprintf(s, "%v: %v", k, v)
		}
		_, _ = fmt.Fprint(s, "}")
	})
}
