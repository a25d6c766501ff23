/*
 * Licensed to the Apache Software Foundation (ASF) under one or more
 * contributor license agreements.  See the NOTICE file distributed with
 * this work for additional information regarding copyright ownership.
 * The ASF licenses this file to You under the Apache License, Version 2.0
 * (the "License"); you may not use this file except in compliance with
 * the License.  You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package config provides configuration management for the orchestrator.
// config 包提供编排器的配置管理功能。
//
// Configuration loading priority (highest to lowest):
// 配置加载优先级（从高到低）：
// 1. Environment variables / 环境变量
// 2. Configuration file / 配置文件
// 3. Default values / 默认值
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/openmpc/phaserun/internal/plan"
)

// Default configuration values
// 默认配置值
const (
	DefaultConfigPath = "/etc/phaserun/config.yaml"
	DefaultLogLevel   = "info"

	// DefaultLogFile is empty: log to the console only unless a file is configured
	// DefaultLogFile 为空：除非配置了文件，否则只输出到控制台
	DefaultLogFile       = ""
	DefaultLogMaxSize    = 100 // MB
	DefaultLogMaxBackups = 3
	DefaultLogMaxAge     = 7 // days
)

// Config represents the orchestrator configuration
// Config 表示编排器配置
type Config struct {
	// Log configuration / 日志配置
	Log LogConfig `mapstructure:"log" yaml:"log"`

	// Plan is the static execution plan / Plan 是静态执行计划
	Plan plan.Plan `mapstructure:"plan" yaml:"plan"`
}

// LogConfig contains logging settings
// LogConfig 包含日志设置
type LogConfig struct {
	// Level is the log level (debug, info, warn, error)
	// Level 是日志级别（debug, info, warn, error）
	Level string `mapstructure:"level" yaml:"level"`

	// File is the log file path; empty disables file logging
	// File 是日志文件路径；为空则不写文件
	File string `mapstructure:"file" yaml:"file,omitempty"`

	// MaxSize is the maximum size of log file in MB before rotation
	// MaxSize 是日志文件轮转前的最大大小（MB）
	MaxSize int `mapstructure:"max_size" yaml:"max_size"`

	// MaxBackups is the maximum number of old log files to retain
	// MaxBackups 是保留的旧日志文件的最大数量
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`

	// MaxAge is the maximum number of days to retain old log files
	// MaxAge 是保留旧日志文件的最大天数
	MaxAge int `mapstructure:"max_age" yaml:"max_age"`
}

// Load loads configuration from file and environment variables
// Load 从文件和环境变量加载配置
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set default values / 设置默认值
	setDefaults(v)

	// Set config file path / 设置配置文件路径
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Check environment variable / 检查环境变量
		envPath := os.Getenv("PHASERUN_CONFIG_PATH")
		if envPath != "" {
			v.SetConfigFile(envPath)
		} else {
			v.SetConfigFile(DefaultConfigPath)
		}
	}

	// Enable environment variable override / 启用环境变量覆盖
	v.SetEnvPrefix("PHASERUN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file / 读取配置文件
	if err := v.ReadInConfig(); err != nil {
		// Config file not found is not an error if we have defaults
		// 如果有默认值，配置文件未找到不是错误
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			// Check if file exists / 检查文件是否存在
			if _, statErr := os.Stat(v.ConfigFileUsed()); statErr == nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// File doesn't exist, use defaults / 文件不存在，使用默认值
		}
	}

	// Unmarshal config / 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Re-decode the plan subtree with yaml.v3: viper folds all map keys to
	// lower case, which would mangle per-spec env variable names.
	// 用 yaml.v3 重新解码 plan 子树：viper 会把所有 map 键折叠为小写，
	// 这会破坏每个启动项的环境变量名。
	if data, err := os.ReadFile(v.ConfigFileUsed()); err == nil {
		p, err := decodePlanSection(data)
		if err != nil {
			return nil, err
		}
		cfg.Plan = p
	}

	return &cfg, nil
}

// decodePlanSection extracts the plan from a raw YAML document
// decodePlanSection 从原始 YAML 文档中提取计划
func decodePlanSection(data []byte) (plan.Plan, error) {
	var raw struct {
		Plan plan.Plan `yaml:"plan"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return plan.Plan{}, fmt.Errorf("failed to parse plan section: %w", err)
	}
	return raw.Plan, nil
}

// setDefaults sets default configuration values
// setDefaults 设置默认配置值
func setDefaults(v *viper.Viper) {
	// Log defaults / 日志默认值
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.file", DefaultLogFile)
	v.SetDefault("log.max_size", DefaultLogMaxSize)
	v.SetDefault("log.max_backups", DefaultLogMaxBackups)
	v.SetDefault("log.max_age", DefaultLogMaxAge)

	// The plan has no defaults: a run without phases is a configuration error
	// 计划没有默认值：没有阶段的运行属于配置错误
}

// Validate validates the configuration
// Validate 验证配置
func (c *Config) Validate() error {
	// Validate log level / 验证日志级别
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}

	// Validate the execution plan / 验证执行计划
	if err := c.Plan.Validate(); err != nil {
		return fmt.Errorf("invalid plan: %w", err)
	}

	return nil
}

// String returns a string representation of the config (for debugging)
// String 返回配置的字符串表示（用于调试）
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Log.Level: %s, Log.File: %s, Plan.Phases: %d}",
		c.Log.Level,
		c.Log.File,
		len(c.Plan.Phases),
	)
}

// ToYAML serializes the configuration to YAML format
// ToYAML 将配置序列化为 YAML 格式
func (c *Config) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return data, nil
}

// LoadFromYAML loads configuration from YAML bytes
// LoadFromYAML 从 YAML 字节加载配置
func LoadFromYAML(yamlData []byte) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	// Set defaults first / 首先设置默认值
	setDefaults(v)

	// Read from bytes / 从字节读取
	if err := v.ReadConfig(strings.NewReader(string(yamlData))); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Unmarshal config / 解析配置
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Same yaml.v3 pass as Load, for case-preserving env names
	// 与 Load 相同的 yaml.v3 处理，以保留环境变量名的大小写
	p, err := decodePlanSection(yamlData)
	if err != nil {
		return nil, err
	}
	cfg.Plan = p

	return &cfg, nil
}

// Equal compares two configs for equality
// Equal 比较两个配置是否相等
func (c *Config) Equal(other *Config) bool {
	if c == nil || other == nil {
		return c == other
	}

	// Compare Log / 比较日志配置
	if c.Log != other.Log {
		return false
	}

	// Compare Plan / 比较计划
	return c.Plan.Equal(&other.Plan)
}
