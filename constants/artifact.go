package constants

// ArtifactKind identifies a generated or extracted office document.
type ArtifactKind string

const (
	ArtifactDocx ArtifactKind = "docx"
	ArtifactXlsx ArtifactKind = "xlsx"
)

// ArtifactKinds lists every kind the pipeline recognizes, in scan order.
var ArtifactKinds = []ArtifactKind{ArtifactDocx, ArtifactXlsx}

// Suffix returns the file suffix for artifact files, leading dot included.
func (k ArtifactKind) Suffix() string {
	return "." + string(k)
}

// MIMEType returns the fixed content type served for an artifact kind.
func (k ArtifactKind) MIMEType() string {
	switch k {
	case ArtifactDocx:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ArtifactXlsx:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}
