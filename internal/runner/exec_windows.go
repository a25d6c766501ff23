//go:build windows
// +build windows

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

import (
	"context"
	"os"
	"os/exec"
)

// shellCommand builds a shell-interpreted command for Windows systems
// shellCommand 为 Windows 系统构建由 shell 解释的命令
func shellCommand(ctx context.Context, command string) *exec.Cmd {
	return exec.CommandContext(ctx, "cmd", "/c", command)
}

// terminationSignal always returns "" on Windows: there is no signal
// termination to distinguish from an exit code.
// terminationSignal 在 Windows 上始终返回空字符串：没有需要与退出码
// 区分的信号终止。
func terminationSignal(_ *os.ProcessState) string {
	return ""
}
