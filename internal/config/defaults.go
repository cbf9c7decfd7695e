package config

const (
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultNamingPolicy  = NamingBIDS
	defaultSession       = "01"
	defaultMethod        = MethodCopy
	defaultJournalName   = "journal.db"
	defaultPlacementLock = true
)

// Naming policies accepted by naming.policy and --naming.
const (
	NamingPreserve = "preserve"
	NamingCustom   = "custom"
	NamingBIDS     = "bids"
)

// Materialization methods accepted by placement.method and --method.
const (
	MethodCopy    = "copy"
	MethodLink    = "link"
	MethodSymlink = "symlink"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir(),
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Naming: Naming{
			Policy:  defaultNamingPolicy,
			Session: defaultSession,
		},
		Placement: Placement{
			Method: defaultMethod,
			Lock:   defaultPlacementLock,
		},
	}
}
