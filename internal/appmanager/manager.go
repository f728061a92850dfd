package appmanager

import (
	"fmt"
	"log"
	"os"
	"sort"
	"sync"

	"DepreciationRecon/api"
	"DepreciationRecon/internal/config"
	"DepreciationRecon/internal/jobs"
	"DepreciationRecon/internal/logger"
	"DepreciationRecon/internal/serviceiface"

	"gopkg.in/yaml.v3"
)

var serviceConstructors = map[string]func(map[string]interface{}) serviceiface.Service{
	"logger": func(cfg map[string]interface{}) serviceiface.Service {
		return logger.NewLoggerService(cfg)
	},
	"gateway": func(cfg map[string]interface{}) serviceiface.Service {
		return api.NewGatewayService(cfg)
	},
	"cron": func(cfg map[string]interface{}) serviceiface.Service {
		return jobs.NewCronService(cfg)
	},
}

// envOverrides maps service config keys to the environment variables that
// replace them.
var envOverrides = map[string]map[string]string{
	"gateway": {
		"port":          "RECON_HTTP_PORT",
		"csv_delimiter": "RECON_CSV_DELIMITER",
		"report_author": "RECON_REPORT_AUTHOR",
	},
	"cron": {
		"schedule":      "RECON_INBOX_SCHEDULE",
		"inbox_dir":     "RECON_INBOX_DIR",
		"outbox_dir":    "RECON_OUTBOX_DIR",
		"csv_delimiter": "RECON_CSV_DELIMITER",
		"report_author": "RECON_REPORT_AUTHOR",
	},
}

// ------------------- MANAGER -------------------

type AppManager struct {
	services []serviceiface.Service
	started  int
	mu       sync.Mutex
}

func NewAppManager() *AppManager {
	return &AppManager{
		services: make([]serviceiface.Service, 0),
	}
}

func (am *AppManager) RegisterService(s serviceiface.Service) {
	am.mu.Lock()
	defer am.mu.Unlock()
	am.services = append(am.services, s)
}

// StartAll starts services in registration order. On failure the services
// already started are stopped again.
func (am *AppManager) StartAll() error {
	am.mu.Lock()
	defer am.mu.Unlock()

	for _, service := range am.services {
		log.Println("Starting service:", service.Name())
		if err := service.Start(); err != nil {
			am.stopStarted()
			return fmt.Errorf("failed to start service %s: %w", service.Name(), err)
		}
		am.started++
	}
	return nil
}

func (am *AppManager) StopAll() error {
	am.mu.Lock()
	defer am.mu.Unlock()
	return am.stopStarted()
}

func (am *AppManager) stopStarted() error {
	var firstErr error
	for i := am.started - 1; i >= 0; i-- {
		svc := am.services[i]
		if err := svc.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to stop service %s: %w", svc.Name(), err)
		}
	}
	am.started = 0
	return firstErr
}

// ------------------- YAML CONFIG -------------------

type ServiceSequencer struct {
	Services []ServiceConfig `yaml:"services"`
}

type ServiceConfig struct {
	Name       string                 `yaml:"name"`
	StartOrder int                    `yaml:"start_order"`
	Config     map[string]interface{} `yaml:"config"`
}

func LoadServiceSequence(path string) ([]ServiceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseServiceSequence(data)
}

func ParseServiceSequence(data []byte) ([]ServiceConfig, error) {
	var seq ServiceSequencer
	if err := yaml.Unmarshal(data, &seq); err != nil {
		return nil, err
	}

	sort.SliceStable(seq.Services, func(i, j int) bool {
		return seq.Services[i].StartOrder < seq.Services[j].StartOrder
	})
	for i := range seq.Services {
		if overrides, ok := envOverrides[seq.Services[i].Name]; ok {
			seq.Services[i].Config = config.ApplyEnv(seq.Services[i].Config, overrides)
		}
	}
	return seq.Services, nil
}

// AutoRegisterServices builds every known service from its config. Unknown
// names are logged and skipped.
func (am *AppManager) AutoRegisterServices(configs []ServiceConfig) {
	for _, svc := range configs {
		constructor, ok := serviceConstructors[svc.Name]
		if !ok {
			log.Printf("[APP] Unknown service %q in configuration, skipping", svc.Name)
			continue
		}
		am.RegisterService(constructor(svc.Config))
	}

	for _, svc := range am.services {
		if l, ok := svc.(*logger.LoggerService); ok {
			logger.SetGlobalLogger(l)
			break
		}
	}
}

func (am *AppManager) GetServiceByName(name string) serviceiface.Service {
	for _, svc := range am.services {
		if svc.Name() == name {
			return svc
		}
	}
	return nil
}
