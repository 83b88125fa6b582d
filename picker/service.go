package picker

import (
	"context"
	"errors"

	"github.com/lexcodex/crumb/breadcrumbs"
)

// Service implements the picker surface the breadcrumb control opens on
// selection. The anchoring element decides the variant: file elements get a
// sibling file tree, symbol and group elements get the owning outline.
type Service struct {
	FS     FileSystem
	Errors ErrorSink
}

// Open starts a picker for anchor and reports its single result through
// onDone.
func (s *Service) Open(anchor breadcrumbs.Element, model *breadcrumbs.Model, onDone func(target breadcrumbs.Element, picked bool)) (breadcrumbs.PickerSession, error) {
	done := func(res Result) {
		onDone(res.Element, !res.Dismissed && res.Element != nil)
	}
	ctx := context.Background()
	switch el := anchor.(type) {
	case breadcrumbs.FileElement:
		return NewFilePicker(ctx, s.fs(), el, s.Errors, done), nil
	default:
		if model == nil || model.Outline() == nil {
			return nil, errors.New("no outline to pick from")
		}
		return NewOutlinePicker(ctx, model.Outline(), s.Errors, done), nil
	}
}

func (s *Service) fs() FileSystem {
	if s.FS != nil {
		return s.FS
	}
	return OSFileSystem{}
}
