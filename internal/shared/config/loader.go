package config

import (
	"fmt"
	"log"
	"reflect"
	"strconv"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Load 读取 YAML 并解码到 out。
//
// onChange 非空时监听文件变更：每次变更解码到一个新的对象并回调，
// 回调方自己决定如何发布（例如原子替换），out 本身只在首次加载时写入。
// newOut 为每次变更创建新的目标对象。
func Load(cfgName string, out any, newOut func() any, onChange func(any)) (string, error) {
	path, err := Resolve(cfgName)
	if err != nil {
		return "", err
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("read config %s: %w", path, err)
	}
	if err := decode(v, out); err != nil {
		return "", fmt.Errorf("unmarshal config %s: %w", path, err)
	}

	if onChange != nil && newOut != nil {
		v.OnConfigChange(func(e fsnotify.Event) {
			next := newOut()
			if err := decode(v, next); err != nil {
				// 坏配置不替换当前配置
				log.Printf("config reload failed, file=%s err=%v", e.Name, err)
				return
			}
			log.Printf("config reloaded, file=%s op=%s", e.Name, e.Op)
			onChange(next)
		})
		v.WatchConfig()
	}
	return path, nil
}

func decode(v *viper.Viper, out any) error {
	return v.Unmarshal(out, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		durationHook(),
		mapstructure.StringToSliceHookFunc(","),
	)))
}

// durationHook 支持 "1s" / "500ms" 这样的字符串，纯数字按秒处理。
func durationHook() mapstructure.DecodeHookFuncType {
	durType := reflect.TypeOf(time.Duration(0))
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if to != durType {
			return data, nil
		}
		switch from.Kind() {
		case reflect.String:
			s := data.(string)
			if s == "" {
				return time.Duration(0), nil
			}
			if n, err := strconv.ParseFloat(s, 64); err == nil {
				return time.Duration(n * float64(time.Second)), nil
			}
			return time.ParseDuration(s)
		case reflect.Int, reflect.Int32, reflect.Int64:
			return time.Duration(reflect.ValueOf(data).Int()) * time.Second, nil
		case reflect.Float32, reflect.Float64:
			return time.Duration(reflect.ValueOf(data).Float() * float64(time.Second)), nil
		default:
			return data, nil
		}
	}
}
