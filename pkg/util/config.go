package util

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// ReadConfig reads ./data/config.yaml into viper. A missing file is not an error, defaults and
// environment variables still apply.
func ReadConfig(paths ...string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{"./data/"}
	}
	for _, p := range paths {
		viper.AddConfigPath(p)
	}
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}
