package config

import (
	"errors"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"openbooks.com/pkg/logger"
)

type Options struct {
	Service  string
	File     string         // 指定配置文件；为空则按约定找 config/{service}.yaml
	Defaults map[string]any // 没有配置文件时用它兜底
	Watch    bool
	// OnChange 文件变更后回调，拿到的是已经重新读过的 viper。
	// 不会重新 Unmarshal 到 out，运行中的组件自己决定要不要热更新。
	OnChange func(v *viper.Viper)
}

func Load(o Options, out any) (*viper.Viper, error) {
	v := viper.New()
	for k, val := range o.Defaults {
		v.SetDefault(k, val)
	}

	if o.File != "" {
		v.SetConfigFile(o.File)
	} else {
		// 约定：config/{service}.yaml
		v.SetConfigName(o.Service)
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// 环境变量覆盖，例如 OPENBOOKS_LOG_LEVEL 覆盖 log.level
	v.SetEnvPrefix(strings.ToUpper(o.Service))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	found := true
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		// 约定路径下没有文件：只用默认值 + 环境变量；显式指定的文件必须存在
		if o.File != "" || !errors.As(err, &nf) {
			return nil, err
		}
		found = false
	}

	if err := v.Unmarshal(out); err != nil {
		return nil, err
	}

	if !found {
		logger.Log.Info("config file not found, using defaults", zap.String("service", o.Service))
		return v, nil
	}
	logger.Log.Info("config loaded", zap.String("service", o.Service), zap.String("file", v.ConfigFileUsed()))

	if o.Watch {
		v.OnConfigChange(func(e fsnotify.Event) {
			logger.Log.Info("config file changed", zap.String("service", o.Service), zap.String("file", e.Name))
			if o.OnChange != nil {
				o.OnChange(v)
			}
		})
		v.WatchConfig()
	}
	return v, nil
}
