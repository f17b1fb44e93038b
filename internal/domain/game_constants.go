package domain

const (
	// MinPlayers is the smallest table the role draw supports.
	MinPlayers = 5
	// MaxPlayers bounds the lobby size.
	MaxPlayers = 16
	// BaiterWinThreshold is the bait count a surviving Baiter needs to share the win.
	BaiterWinThreshold = 3
	// DefaultJailerExecutions is the Jailer's execution budget when unconfigured.
	DefaultJailerExecutions = 3
)
