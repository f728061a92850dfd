package serviceiface

// Service is a long-running component started and stopped by the app
// manager in services.yaml order.
type Service interface {
	Name() string
	Start() error
	Stop() error
}
