package serverconfig

import (
	"sync"
	"sync/atomic"

	"github.com/mgmcelwee/evony/internal/shared/config"
)

var (
	current atomic.Pointer[Config]

	mu        sync.Mutex
	listeners []func(*Config)
)

// Load 加载配置并开始监听变更。cfgName 为空时向上查找 configs/conf.yml。
func Load(cfgName string) (*Config, error) {
	conf := &Config{}
	_, err := config.Load(cfgName, conf,
		func() any { return &Config{} },
		func(next any) {
			c := next.(*Config)
			c.applyDefaults()
			publish(c)
		})
	if err != nil {
		return nil, err
	}
	conf.applyDefaults()
	current.Store(conf)
	return conf, nil
}

// Current 返回当前生效的配置，未加载时返回默认值。
func Current() *Config {
	if c := current.Load(); c != nil {
		return c
	}
	c := &Config{}
	c.applyDefaults()
	return c
}

// OnChange 注册热更新回调，回调在 fsnotify 的 goroutine 上执行。
func OnChange(fn func(*Config)) {
	mu.Lock()
	listeners = append(listeners, fn)
	mu.Unlock()
}

func publish(c *Config) {
	current.Store(c)
	mu.Lock()
	fns := append([]func(*Config){}, listeners...)
	mu.Unlock()
	for _, fn := range fns {
		fn(c)
	}
}
