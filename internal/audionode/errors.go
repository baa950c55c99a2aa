package audionode

import "oscmix/internal/oscerr"

func newConfigErr(msg string) error {
	return oscerr.New(oscerr.Config, "audionode", msg)
}
