package config

import (
	"errors"
	"fmt"
	"runtime"

	cberrors "github.com/standardbeagle/codebind/internal/errors"
)

// Validator validates configuration and sets smart defaults
type Validator struct{}

// NewValidator creates a new configuration validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates configuration and applies smart defaults.
// Returns an error if validation fails.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateProjectConfig(&cfg.Project); err != nil {
		return cberrors.NewConfigError("project", "", err)
	}

	if err := v.validateScanConfig(&cfg.Scan); err != nil {
		return cberrors.NewConfigError("scan", "", err)
	}

	if err := v.validateWatchConfig(&cfg.Watch); err != nil {
		return cberrors.NewConfigError("watch", "", err)
	}

	if err := v.validateResolverConfig(&cfg.Resolver); err != nil {
		return cberrors.NewConfigError("resolver", "", err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateProjectConfig(project *Project) error {
	if project.Root == "" {
		return errors.New("project root cannot be empty")
	}
	return nil
}

func (v *Validator) validateScanConfig(scan *Scan) error {
	if scan.MaxFileSize < 0 {
		return fmt.Errorf("MaxFileSize cannot be negative, got %d", scan.MaxFileSize)
	}
	if scan.MaxFileSize > 100*1024*1024 {
		return fmt.Errorf("MaxFileSize should not exceed 100MB, got %d", scan.MaxFileSize)
	}
	return nil
}

func (v *Validator) validateWatchConfig(watch *Watch) error {
	if watch.DebounceMs < 0 {
		return fmt.Errorf("DebounceMs cannot be negative, got %d", watch.DebounceMs)
	}
	return nil
}

func (v *Validator) validateResolverConfig(res *Resolver) error {
	// Workers: 0 means auto-detect (set by smart defaults)
	if res.Workers < 0 {
		return fmt.Errorf("Workers cannot be negative, got %d", res.Workers)
	}
	if res.SuggestThreshold < 0 || res.SuggestThreshold > 1 {
		return fmt.Errorf("SuggestThreshold must be in [0,1], got %v", res.SuggestThreshold)
	}
	return nil
}

// setSmartDefaults applies defaults based on system capabilities
func (v *Validator) setSmartDefaults(cfg *Config) {
	// Leave one core free for the host; minimum of 1
	if cfg.Resolver.Workers == 0 {
		numCPU := runtime.NumCPU()
		cfg.Resolver.Workers = max(1, numCPU-1)
	}

	if cfg.Scan.MaxFileSize == 0 {
		cfg.Scan.MaxFileSize = 10 * 1024 * 1024
	}

	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = 300
	}

	if cfg.Resolver.SuggestThreshold == 0 {
		cfg.Resolver.SuggestThreshold = 0.85
	}
}

// ValidateConfig is a convenience function for quick validation
func ValidateConfig(cfg *Config) error {
	validator := NewValidator()
	return validator.ValidateAndSetDefaults(cfg)
}
