// Copyright 2023 The Chromium Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package shutil

import "strings"

// Join joins args to a single command line, which Split splits
// back to args.
func Join(args []string) string {
	var sb strings.Builder
	for i, arg := range args {
		if i > 0 {
			sb.WriteByte(' ')
		}
		quote(&sb, arg)
	}
	return sb.String()
}

func quote(sb *strings.Builder, arg string) {
	if arg != "" && !strings.ContainsAny(arg, " \t\n\r\"\\") {
		sb.WriteString(arg)
		return
	}
	sb.WriteByte('"')
	for i := 0; i < len(arg); i++ {
		switch arg[i] {
		case '"', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteByte(arg[i])
	}
	sb.WriteByte('"')
}
