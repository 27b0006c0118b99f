package console

// ModalKind discriminates the modal state.
type ModalKind string

const (
	ModalClosed   ModalKind = "closed"
	ModalCreating ModalKind = "creating"
	ModalEditing  ModalKind = "editing"
)

// Modal is the form state of a controller. ID is set only while editing.
type Modal struct {
	Kind ModalKind `json:"kind"`
	ID   string    `json:"id,omitempty"`
}

func closedModal() Modal { return Modal{Kind: ModalClosed} }

func creatingModal() Modal { return Modal{Kind: ModalCreating} }

func editingModal(id string) Modal { return Modal{Kind: ModalEditing, ID: id} }

// Open reports whether a form is showing.
func (m Modal) Open() bool { return m.Kind == ModalCreating || m.Kind == ModalEditing }
