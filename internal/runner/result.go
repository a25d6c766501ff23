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

package runner

import "time"

// SpecState is the terminal state observed for one launch spec
// SpecState 是单个启动项观察到的最终状态
type SpecState string

const (
	// StateExited indicates the process ran and exited with a code
	// StateExited 表示进程运行并以某个退出码退出
	StateExited SpecState = "exited"

	// StateSignaled indicates the process was terminated by a signal
	// StateSignaled 表示进程被信号终止
	StateSignaled SpecState = "signaled"

	// StateLaunchFailed indicates the process could not be started at all
	// StateLaunchFailed 表示进程根本无法启动
	StateLaunchFailed SpecState = "launch_failed"
)

// SpecResult is the resolution of one launch spec.
// SpecResult 是单个启动项的执行结果。
type SpecResult struct {
	// Workdir is the working directory the spec was rooted at
	// Workdir 是启动项的工作目录
	Workdir string `json:"workdir,omitempty"`

	// Command is the display form of the command line
	// Command 是命令行的显示形式
	Command string `json:"command"`

	// PID is the OS process identifier, 0 if the launch failed
	// PID 是操作系统进程标识符，启动失败时为 0
	PID int `json:"pid,omitempty"`

	// State is the terminal state / State 是最终状态
	State SpecState `json:"state"`

	// ExitCode is the exit code when State is exited
	// ExitCode 是 State 为 exited 时的退出码
	ExitCode int `json:"exit_code"`

	// Signal names the terminating signal when State is signaled
	// Signal 是 State 为 signaled 时终止进程的信号名
	Signal string `json:"signal,omitempty"`

	// Err carries the launch error when State is launch_failed
	// Err 携带 State 为 launch_failed 时的启动错误
	Err string `json:"err,omitempty"`

	// Duration is the wall time from start to resolution
	// Duration 是从启动到结束的实际耗时
	Duration time.Duration `json:"duration"`
}

// Succeeded reports whether the spec ran and exited with code 0.
// Succeeded 报告启动项是否运行并以退出码 0 结束。
func (s *SpecResult) Succeeded() bool {
	return s.State == StateExited && s.ExitCode == 0
}

// PhaseResult aggregates the resolutions of one phase.
// PhaseResult 聚合单个阶段的执行结果。
type PhaseResult struct {
	// Ordinal is the phase's position in the run
	// Ordinal 是阶段在本次运行中的序号
	Ordinal int `json:"ordinal"`

	// Name is the phase label / Name 是阶段标签
	Name string `json:"name,omitempty"`

	// Specs holds one result per launch spec, in spec order
	// Specs 按启动项顺序保存每个启动项的结果
	Specs []SpecResult `json:"specs"`
}

// RunResult aggregates the terminal statuses of all launch specs
// across all phases of one run.
// RunResult 聚合一次运行中所有阶段、所有启动项的最终状态。
type RunResult struct {
	Phases []PhaseResult `json:"phases"`
}

// Succeeded reports whether every launch spec exited with code 0.
// Succeeded 报告是否每个启动项都以退出码 0 结束。
func (r *RunResult) Succeeded() bool {
	for i := range r.Phases {
		for j := range r.Phases[i].Specs {
			if !r.Phases[i].Specs[j].Succeeded() {
				return false
			}
		}
	}
	return true
}

// SpecCount returns the total number of resolved launch specs.
// SpecCount 返回已结束的启动项总数。
func (r *RunResult) SpecCount() int {
	n := 0
	for i := range r.Phases {
		n += len(r.Phases[i].Specs)
	}
	return n
}

// Failures returns the results of all launch specs that did not succeed.
// Failures 返回所有未成功的启动项的结果。
func (r *RunResult) Failures() []SpecResult {
	var failures []SpecResult
	for i := range r.Phases {
		for j := range r.Phases[i].Specs {
			if !r.Phases[i].Specs[j].Succeeded() {
				failures = append(failures, r.Phases[i].Specs[j])
			}
		}
	}
	return failures
}
