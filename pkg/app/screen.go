package app

// Screen identifies a top-level view.
type Screen string

const (
	WelcomeScreen    Screen = "welcome-screen"
	TaskSetupScreen  Screen = "task-setup-screen"
	TimerScreen      Screen = "timer-screen"
	CompletionScreen Screen = "completion-screen"
	InsightsScreen   Screen = "insights-screen"
	WalletScreen     Screen = "wallet-screen"
)

// Screens lists every screen in navigation order.
func Screens() []Screen {
	return []Screen{WelcomeScreen, TaskSetupScreen, TimerScreen, CompletionScreen, InsightsScreen, WalletScreen}
}

// Valid reports whether s names a known screen.
func (s Screen) Valid() bool {
	for _, known := range Screens() {
		if s == known {
			return true
		}
	}
	return false
}

// Navigator holds the current screen and the path that led to it.
type Navigator struct {
	current Screen
	history []Screen
}

// NewNavigator starts at the welcome screen.
func NewNavigator() Navigator {
	return Navigator{current: WelcomeScreen}
}

func (n *Navigator) Current() Screen {
	if n.current == "" {
		return WelcomeScreen
	}
	return n.current
}

// Go switches to s. Navigating to the current screen is a no-op and reports
// false.
func (n *Navigator) Go(s Screen) bool {
	if s == n.Current() {
		return false
	}
	n.history = append(n.history, n.Current())
	n.current = s
	return true
}

// Back returns to the previous screen, if any.
func (n *Navigator) Back() bool {
	if len(n.history) == 0 {
		return false
	}
	n.current = n.history[len(n.history)-1]
	n.history = n.history[:len(n.history)-1]
	return true
}
