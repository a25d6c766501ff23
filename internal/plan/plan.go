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

// Package plan defines the static execution plan for the orchestrator.
// plan 包定义编排器的静态执行计划。
//
// A Plan is an ordered list of Phases; a Phase is a set of LaunchSpecs
// that all run concurrently and must all terminate before the next
// Phase begins. Plans are built once at startup and never mutated.
// Plan 是有序的 Phase 列表；Phase 是一组并发运行的 LaunchSpec，
// 必须全部结束后下一个 Phase 才能开始。Plan 在启动时构建一次，之后不再修改。
package plan

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Common errors for plan validation
// 计划验证的常见错误
var (
	// ErrNoPhases indicates the plan contains no phases
	// ErrNoPhases 表示计划不包含任何阶段
	ErrNoPhases = errors.New("plan must contain at least one phase")

	// ErrEmptyPhase indicates a phase contains no launch specs
	// ErrEmptyPhase 表示阶段不包含任何启动项
	ErrEmptyPhase = errors.New("phase must contain at least one launch spec")

	// ErrNoCommand indicates a launch spec has neither a command string nor args
	// ErrNoCommand 表示启动项既没有命令字符串也没有参数列表
	ErrNoCommand = errors.New("launch spec must set exactly one of command or args")

	// ErrAmbiguousCommand indicates a launch spec sets both a command string and args
	// ErrAmbiguousCommand 表示启动项同时设置了命令字符串和参数列表
	ErrAmbiguousCommand = errors.New("launch spec must not set both command and args")

	// ErrEmptyProgram indicates the first element of args is empty
	// ErrEmptyProgram 表示参数列表的第一个元素为空
	ErrEmptyProgram = errors.New("launch spec args[0] must name a program")
)

// LaunchSpec describes one external program invocation.
// LaunchSpec 描述一次外部程序调用。
//
// Exactly one of Command or Args must be set. Command is interpreted by
// the platform shell; Args is executed directly with no shell involved.
// Command 和 Args 必须且只能设置一个。Command 由平台 shell 解释执行；
// Args 直接执行，不经过 shell。
type LaunchSpec struct {
	// Workdir is the working directory the process is rooted at.
	// It is not checked for existence here; the process launcher decides.
	// Workdir 是进程的工作目录。此处不检查其是否存在，由进程启动器决定。
	Workdir string `mapstructure:"workdir" yaml:"workdir,omitempty"`

	// Command is a shell-interpreted command line
	// Command 是由 shell 解释的命令行
	Command string `mapstructure:"command" yaml:"command,omitempty"`

	// Args is the argument vector, args[0] being the program
	// Args 是参数向量，args[0] 为程序名
	Args []string `mapstructure:"args" yaml:"args,omitempty"`

	// Env holds extra environment variables appended to the inherited environment
	// Env 保存追加到继承环境变量之后的额外环境变量
	Env map[string]string `mapstructure:"env" yaml:"env,omitempty"`
}

// Phase is a set of launch specs that run concurrently.
// Phase 是一组并发运行的启动项。
type Phase struct {
	// Name is an optional label used in logs and results
	// Name 是可选标签，用于日志和结果
	Name string `mapstructure:"name" yaml:"name,omitempty"`

	// Specs are the launch specs of this phase
	// Specs 是此阶段的启动项
	Specs []LaunchSpec `mapstructure:"specs" yaml:"specs"`
}

// Plan is the ordered sequence of phases for one run.
// Plan 是一次运行的有序阶段序列。
type Plan struct {
	// Phases execute strictly in order
	// Phases 严格按顺序执行
	Phases []Phase `mapstructure:"phases" yaml:"phases"`
}

// Validate checks the plan for structural errors.
// Validate 检查计划的结构性错误。
//
// Working directories and programs are deliberately not checked for
// existence: launching is delegated entirely to the operating system.
// 工作目录和程序故意不检查是否存在：启动完全委托给操作系统。
func (p *Plan) Validate() error {
	if len(p.Phases) == 0 {
		return ErrNoPhases
	}
	for i, phase := range p.Phases {
		if len(phase.Specs) == 0 {
			return fmt.Errorf("phase %d (%s): %w", i, phase.Label(i), ErrEmptyPhase)
		}
		for j, spec := range phase.Specs {
			if err := spec.Validate(); err != nil {
				return fmt.Errorf("phase %d spec %d: %w", i, j, err)
			}
		}
	}
	return nil
}

// Validate checks a single launch spec.
// Validate 检查单个启动项。
func (s *LaunchSpec) Validate() error {
	hasCommand := s.Command != ""
	hasArgs := len(s.Args) > 0

	switch {
	case hasCommand && hasArgs:
		return ErrAmbiguousCommand
	case !hasCommand && !hasArgs:
		return ErrNoCommand
	case hasArgs && s.Args[0] == "":
		return ErrEmptyProgram
	}
	return nil
}

// CommandLine returns a display form of the spec's command line.
// CommandLine 返回启动项命令行的显示形式。
func (s *LaunchSpec) CommandLine() string {
	if s.Command != "" {
		return s.Command
	}
	return strings.Join(s.Args, " ")
}

// Label returns the phase name, or a positional fallback for logs.
// Label 返回阶段名称，若为空则返回基于序号的名称，用于日志。
func (p *Phase) Label(ordinal int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("phase-%d", ordinal)
}

// ToYAML serializes the plan to YAML.
// ToYAML 将计划序列化为 YAML。
func (p *Plan) ToYAML() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}
	return data, nil
}

// FromYAML parses a plan from YAML bytes. The result is not validated;
// call Validate separately.
// FromYAML 从 YAML 字节解析计划。结果未经验证；请单独调用 Validate。
func FromYAML(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse plan YAML: %w", err)
	}
	return &p, nil
}

// Equal compares two plans for equality.
// Equal 比较两个计划是否相等。
func (p *Plan) Equal(other *Plan) bool {
	if p == nil || other == nil {
		return p == other
	}
	if len(p.Phases) != len(other.Phases) {
		return false
	}
	for i := range p.Phases {
		if !p.Phases[i].Equal(&other.Phases[i]) {
			return false
		}
	}
	return true
}

// Equal compares two phases for equality.
// Equal 比较两个阶段是否相等。
func (p *Phase) Equal(other *Phase) bool {
	if p.Name != other.Name || len(p.Specs) != len(other.Specs) {
		return false
	}
	for i := range p.Specs {
		if !p.Specs[i].Equal(&other.Specs[i]) {
			return false
		}
	}
	return true
}

// Equal compares two launch specs for equality.
// Equal 比较两个启动项是否相等。
func (s *LaunchSpec) Equal(other *LaunchSpec) bool {
	if s.Workdir != other.Workdir || s.Command != other.Command {
		return false
	}
	if len(s.Args) != len(other.Args) || len(s.Env) != len(other.Env) {
		return false
	}
	for i := range s.Args {
		if s.Args[i] != other.Args[i] {
			return false
		}
	}
	for k, v := range s.Env {
		if ov, ok := other.Env[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
