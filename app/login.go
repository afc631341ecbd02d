package app

// flowMode selects which credential flow the login state is running.
type flowMode int

const (
	flowLogin flowMode = iota
	flowSignup
)

// loginFlow walks the user through credential prompts one field at a time.
// The password step switches the input bar into masked mode.
type loginFlow struct {
	mode     flowMode
	step     int
	email    string
	username string
	password string
}

func newLoginFlow(mode flowMode) *loginFlow {
	return &loginFlow{mode: mode}
}

// prompt returns the placeholder for the current step.
func (f *loginFlow) prompt() string {
	if f.mode == flowSignup {
		switch f.step {
		case 0:
			return "Email address"
		case 1:
			return "Username"
		default:
			return "Password"
		}
	}
	switch f.step {
	case 0:
		return "Email or username"
	default:
		return "Password"
	}
}

// masked reports whether the current step collects a secret.
func (f *loginFlow) masked() bool {
	if f.mode == flowSignup {
		return f.step == 2
	}
	return f.step == 1
}

// advance records value for the current step and moves on. It returns true
// when the flow has collected everything.
func (f *loginFlow) advance(value string) bool {
	if f.mode == flowSignup {
		switch f.step {
		case 0:
			f.email = value
		case 1:
			f.username = value
		default:
			f.password = value
		}
		f.step++
		return f.step > 2
	}
	switch f.step {
	case 0:
		f.email = value
	default:
		f.password = value
	}
	f.step++
	return f.step > 1
}
