/*
Copyright 2021 Quayside Labs

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package systemservice

import (
	"fmt"
	"strings"
)

// SystemdNameEscape replaces characters that are not allowed in a systemd
// unit name with their `\x<2-digit hex>` form, the way systemd renders
// them (see systemd.unit(5)). Names are expected to be ascii; this is not
// a full systemd-escape implementation.
func SystemdNameEscape(name string) string {
	var out strings.Builder
	for i := 0; i < len(name); i++ {
		if c := name[i]; isUnitNameChar(c) {
			out.WriteByte(c)
		} else {
			fmt.Fprintf(&out, `\x%02x`, c)
		}
	}
	return out.String()
}

func isUnitNameChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	return strings.IndexByte(`@:-_.\`, c) >= 0
}
