package common

const (
	ComponentThorClient  = "thor-client"
	ComponentWatcher     = "watcher"
	ComponentProcessor   = "processor"
	ComponentForkResolve = "fork-resolver"
	ComponentStore       = "store"
	ComponentHeaderCache = "header-cache"
	ComponentCoordinator = "coordinator"
	ComponentMaintenance = "maintenance"
	ComponentAPI         = "api"
)

var AllComponents = map[string]struct{}{
	ComponentThorClient:  {},
	ComponentWatcher:     {},
	ComponentProcessor:   {},
	ComponentForkResolve: {},
	ComponentStore:       {},
	ComponentHeaderCache: {},
	ComponentCoordinator: {},
	ComponentMaintenance: {},
	ComponentAPI:         {},
}
