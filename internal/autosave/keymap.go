package autosave

import (
	"github.com/DragonRuins/hubdoc/internal/extension"
	"github.com/DragonRuins/hubdoc/internal/model"
)

// Keymap routes the manual-save chord to a controller. Attach it to the
// editor with AddPlugin; Mod-s then flushes pending changes immediately
// instead of falling through to the host's save-page default.
type Keymap struct {
	controller *Controller
}

var _ extension.ViewPlugin = (*Keymap)(nil)

func NewKeymap(c *Controller) *Keymap {
	return &Keymap{controller: c}
}

func (k *Keymap) HandleKey(key extension.Key) bool {
	if key.Chord() != "Mod-s" {
		return false
	}
	k.controller.SaveNow()
	return true
}

func (k *Keymap) OnTransaction(*model.Transaction)  {}
func (k *Keymap) OnSelectionChange(model.Selection) {}
