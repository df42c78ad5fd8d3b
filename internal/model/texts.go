package model

// TextSource exposes the named text fields of an entity that search
// highlighting may report on. Each searchable entity declares its
// fields explicitly instead of being probed at runtime.
type TextSource interface {
	TextFields() map[string]string
}

func (c Card) TextFields() map[string]string {
	return map[string]string{"title": c.Title, "description": c.Description}
}

func (b Board) TextFields() map[string]string {
	return map[string]string{"title": b.Title, "description": b.Description}
}

func (l Label) TextFields() map[string]string {
	return map[string]string{"name": l.Name}
}
