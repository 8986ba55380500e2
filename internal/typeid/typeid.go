package typeid

import (
	"go.jetify.com/typeid/v2"
)

const (
	PrefixDrag   = "drag"
	PrefixExport = "bbox"
	PrefixModel  = "model"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewDragID() string   { return New(PrefixDrag) }
func NewExportID() string { return New(PrefixExport) }
func NewModelID() string  { return New(PrefixModel) }
