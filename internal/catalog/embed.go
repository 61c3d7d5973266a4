package catalog

import "embed"

//go:embed data/*.yaml
var embedded embed.FS
