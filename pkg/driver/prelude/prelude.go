// Package prelude registers every driver provider the program ships with.
package prelude

import (
	_ "driversync/pkg/driver/exec/native"
	_ "driversync/pkg/driver/fetchurl/fetchurl"
	_ "driversync/pkg/driver/httpclient/native"
	_ "driversync/pkg/driver/process/gopsutil"
	_ "driversync/pkg/driver/shell/cmd"
	_ "driversync/pkg/driver/shell/powershell"
)
