package app

type Cfg struct {
	Name    string  `yaml:"name" mapstructure:"name"`
	Log     Log     `yaml:"log" mapstructure:"log"`
	Input   string  `yaml:"input" mapstructure:"input"`   // 为空或 "-" 读 stdin
	Output  string  `yaml:"output" mapstructure:"output"` // 为空或 "-" 写 stdout
	Engine  Engine  `yaml:"engine" mapstructure:"engine"`
	Feed    Feed    `yaml:"feed" mapstructure:"feed"`
	Metrics Metrics `yaml:"metrics" mapstructure:"metrics"`
	Nats    Nats    `yaml:"nats" mapstructure:"nats"`
}

type Log struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"`
}

type Engine struct {
	MailboxSize  int  `yaml:"mailbox_size" mapstructure:"mailbox_size"`
	BatchMax     int  `yaml:"batch_max" mapstructure:"batch_max"`
	EventBusSize int  `yaml:"event_bus_size" mapstructure:"event_bus_size"`
	Lossless     bool `yaml:"lossless" mapstructure:"lossless"`
}

type Feed struct {
	Rate   float64 `yaml:"rate" mapstructure:"rate"` // 每秒指令数，0 不限
	Burst  int     `yaml:"burst" mapstructure:"burst"`
	Strict bool    `yaml:"strict" mapstructure:"strict"` // 坏行直接退出
}

type Metrics struct {
	Addr string `yaml:"addr" mapstructure:"addr"` // 为空不起 /metrics
}

type Nats struct {
	URL     string `yaml:"url" mapstructure:"url"` // 为空不推送
	Subject string `yaml:"subject" mapstructure:"subject"`
	Codec   string `yaml:"codec" mapstructure:"codec"` // json / binary
}

// Defaults 没有配置文件时的取值
func Defaults() map[string]any {
	return map[string]any{
		"name":                  "openbooks",
		"log.level":             "info",
		"log.file":              "",
		"input":                 "-",
		"output":                "-",
		"engine.mailbox_size":   4096,
		"engine.batch_max":      256,
		"engine.event_bus_size": 1 << 16,
		"engine.lossless":       true,
		"feed.rate":             0,
		"feed.burst":            1,
		"feed.strict":           false,
		"metrics.addr":          "",
		"nats.url":              "",
		"nats.subject":          "openbooks:trade",
		"nats.codec":            "json",
	}
}
