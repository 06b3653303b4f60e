package config

import (
	"errors"
	"fmt"
)

var validIntents = map[string]struct{}{
	"ambient":  {},
	"rhythmic": {},
	"drone":    {},
}

var validProfiles = map[string]struct{}{
	"performer": {},
	"studio":    {},
	"minimal":   {},
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateVision(); err != nil {
		return err
	}
	if err := c.validateGeneration(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateVision() error {
	if c.Vision.BaseURL == "" {
		return errors.New("vision.base_url must be set")
	}
	if c.Vision.Model == "" {
		return errors.New("vision.model must be set")
	}
	return nil
}

func (c *Config) validateGeneration() error {
	if _, ok := validIntents[c.Generation.Intent]; !ok {
		return fmt.Errorf("generation.intent: unsupported value %q (expected ambient, rhythmic, or drone)", c.Generation.Intent)
	}
	if _, ok := validProfiles[c.Generation.LayoutProfile]; !ok {
		return fmt.Errorf("generation.layout_profile: unsupported value %q (expected performer, studio, or minimal)", c.Generation.LayoutProfile)
	}
	if c.Generation.Variations > 16 {
		return errors.New("generation.variations must be 16 or fewer")
	}
	return nil
}
