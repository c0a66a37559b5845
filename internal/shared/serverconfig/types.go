package serverconfig

import "time"

type Config struct {
	MySQL      MySQLConfig      `yaml:"mysql" mapstructure:"mysql"`
	MongoDB    MongoDBConfig    `yaml:"mongodb" mapstructure:"mongodb"`
	HTTPServer HTTPServerConfig `yaml:"httpserver" mapstructure:"httpserver"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Tick       TickConfig       `yaml:"tick" mapstructure:"tick"`
	World      WorldConfig      `yaml:"world" mapstructure:"world"`
}

type MySQLConfig struct {
	Host        string `yaml:"host" mapstructure:"host"`
	Port        int    `yaml:"port" mapstructure:"port"`
	User        string `yaml:"user" mapstructure:"user"`
	Password    string `yaml:"password" mapstructure:"password"`
	DBName      string `yaml:"dbname" mapstructure:"dbname"`
	Charset     string `yaml:"charset" mapstructure:"charset"`
	MaxIdle     int    `yaml:"max_idle" mapstructure:"max_idle"`
	MaxConn     int    `yaml:"max_conn" mapstructure:"max_conn"`
	AutoMigrate bool   `yaml:"auto_migrate" mapstructure:"auto_migrate"`
}

type MongoDBConfig struct {
	URI             string `yaml:"uri" mapstructure:"uri"`
	Database        string `yaml:"database" mapstructure:"database"`
	ConnectTimeoutS int    `yaml:"connect_timeout_s" mapstructure:"connect_timeout_s"`
	MailCollection  string `yaml:"mail_collection" mapstructure:"mail_collection"`
}

type HTTPServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

type LogConfig struct {
	FileDir    string `yaml:"file_dir" mapstructure:"file_dir"`
	MaxSize    int    `yaml:"max_size" mapstructure:"max_size"` // MB
	MaxBackups int    `yaml:"max_backups" mapstructure:"max_backups"`
	MaxAge     int    `yaml:"max_age" mapstructure:"max_age"` // days
	Compress   bool   `yaml:"compress" mapstructure:"compress"`
	Level      string `yaml:"level" mapstructure:"level"` // debug/info/warn/error...
	Dev        bool   `yaml:"dev" mapstructure:"dev"`
}

// TickConfig 读时推进与调度参数。
type TickConfig struct {
	OnRead     *bool         `yaml:"on_read" mapstructure:"on_read"`
	Throttle   time.Duration `yaml:"throttle" mapstructure:"throttle"`
	MaxSteps   int           `yaml:"max_steps" mapstructure:"max_steps"`
	AskTimeout time.Duration `yaml:"ask_timeout" mapstructure:"ask_timeout"`
}

// WorldConfig 选择存储与邮件实现。
type WorldConfig struct {
	Store    string `yaml:"store" mapstructure:"store"`   // mysql | memory
	Mailer   string `yaml:"mailer" mapstructure:"mailer"` // mongodb | memory
	SeedDemo bool   `yaml:"seed_demo" mapstructure:"seed_demo"`
}

const (
	StoreMySQL    = "mysql"
	StoreMemory   = "memory"
	MailerMongoDB = "mongodb"
	MailerMemory  = "memory"
)

// TickOnRead on_read 未配置时默认开启。
func (c TickConfig) TickOnRead() bool {
	return c.OnRead == nil || *c.OnRead
}

// applyDefaults 补齐缺省值。
func (c *Config) applyDefaults() {
	if c.Tick.Throttle <= 0 {
		c.Tick.Throttle = time.Second
	}
	if c.Tick.MaxSteps <= 0 {
		c.Tick.MaxSteps = 100000
	}
	if c.Tick.AskTimeout <= 0 {
		c.Tick.AskTimeout = 30 * time.Second
	}
	if c.World.Store == "" {
		c.World.Store = StoreMemory
	}
	if c.World.Mailer == "" {
		c.World.Mailer = MailerMemory
	}
	if c.MySQL.Charset == "" {
		c.MySQL.Charset = "utf8mb4"
	}
	if c.MongoDB.MailCollection == "" {
		c.MongoDB.MailCollection = "mail_inbox"
	}
	if c.HTTPServer.Port == 0 {
		c.HTTPServer.Port = 8080
	}
}
