package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/4TheSolutions/nest/pkg/mindmap"
	"github.com/4TheSolutions/nest/pkg/scene"
)

// Pan steps cover the same world distance on both axes.
const (
	panStepX = 2 * unitX
	panStepY = unitY
)

// saveState carries the outcome of the most recent save out of the commit
// hook. The editor runs on the alternate screen where nothing can be
// logged, so the status bar surfaces it instead.
type saveState struct {
	commits int
	err     error
}

type modalKind int

const (
	modalNone modalKind = iota
	modalRoot
	modalChild
	modalParent
)

// editorModel is the bubbletea model behind `nest edit`. It draws the
// document on a rune grid and translates terminal input into map
// operations; persistence happens behind the map's commit hook.
type editorModel struct {
	doc  *mindmap.Map
	name string
	save *saveState

	width    int
	height   int
	panX     float64
	panY     float64
	centered bool

	modal  modalKind
	input  textinput.Model
	notice string

	drag   *mindmap.Drag
	dragID mindmap.NodeID
}

func newEditorModel(name string, doc *mindmap.Map, save *saveState) editorModel {
	in := textinput.New()
	in.Placeholder = "label"
	in.CharLimit = 80
	in.Width = 32

	return editorModel{
		doc:    doc,
		name:   name,
		save:   save,
		width:  80,
		height: 24,
		input:  in,
	}
}

func (m editorModel) Init() tea.Cmd { return nil }

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.centered {
			m.centered = true
			m = m.centerView()
		}
		return m, nil

	case tea.KeyMsg:
		if m.modal != modalNone {
			return m.updateModal(msg)
		}
		return m.updateKeys(msg)

	case tea.MouseMsg:
		if m.modal != modalNone {
			return m, nil
		}
		return m.updateMouse(msg)
	}
	return m, nil
}

// updateModal routes every key to the open input so editing behaves
// normally; enter applies the pending operation, esc or an empty label
// abandons it with no document change.
func (m editorModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.closeModal(), nil
	case "enter":
		label := strings.TrimSpace(m.input.Value())
		kind := m.modal
		m = m.closeModal()
		if label == "" {
			return m, nil
		}
		switch kind {
		case modalRoot:
			m.doc.AddRoot(label)
		case modalChild:
			if _, err := m.doc.AddChild(label); err != nil {
				m.notice = err.Error()
			}
		case modalParent:
			if _, err := m.doc.InsertParent(label); err != nil {
				m.notice = err.Error()
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m editorModel) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "r":
		return m.openModal(modalRoot)
	case "c":
		if _, ok := m.doc.Selected(); !ok {
			m.notice = mindmap.ErrNoSelection.Error()
			return m, nil
		}
		return m.openModal(modalChild)
	case "p":
		if _, ok := m.doc.Selected(); !ok {
			m.notice = mindmap.ErrNoSelection.Error()
			return m, nil
		}
		return m.openModal(modalParent)
	case "d":
		if err := m.doc.DeleteSubtree(); err != nil {
			m.notice = err.Error()
		}
	case "+", "=":
		m = m.resizeSelected(mindmap.ResizeStep)
	case "-", "_":
		m = m.resizeSelected(-mindmap.ResizeStep)
	case "left", "h":
		m.panX -= panStepX
	case "right", "l":
		m.panX += panStepX
	case "up", "k":
		m.panY -= panStepY
	case "down", "j":
		m.panY += panStepY
	}
	return m, nil
}

// updateMouse implements the click/drag split: press starts a drag
// session, motion feeds it, and release either commits the move or, when
// the pointer never moved, toggles the selection instead.
func (m editorModel) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.panY -= panStepY
		case tea.MouseButtonWheelDown:
			m.panY += panStepY
		case tea.MouseButtonLeft:
			m.notice = ""
			if msg.Y >= m.canvasHeight() {
				return m, nil
			}
			x, y := toWorld(m.panX, m.panY, msg.X, msg.Y)
			id, ok := m.hit(x, y)
			if !ok {
				return m, nil
			}
			drag, err := m.doc.StartDrag(id)
			if err != nil {
				m.notice = err.Error()
				return m, nil
			}
			m.drag = drag
			m.dragID = id
		}
		return m, nil

	case tea.MouseActionMotion:
		if m.drag != nil {
			x, y := toWorld(m.panX, m.panY, msg.X, msg.Y)
			m.drag.MoveTo(x, y)
		}
		return m, nil

	case tea.MouseActionRelease:
		if m.drag == nil {
			return m, nil
		}
		drag, id := m.drag, m.dragID
		m.drag = nil
		if drag.Moved() {
			drag.End()
			return m, nil
		}
		if err := m.doc.SelectToggle(id); err != nil {
			m.notice = err.Error()
		}
		return m, nil
	}
	return m, nil
}

func (m editorModel) openModal(kind modalKind) (editorModel, tea.Cmd) {
	m.modal = kind
	m.notice = ""
	m.input.SetValue("")
	return m, m.input.Focus()
}

func (m editorModel) closeModal() editorModel {
	m.modal = modalNone
	m.input.SetValue("")
	m.input.Blur()
	return m
}

func (m editorModel) resizeSelected(delta float64) editorModel {
	id, ok := m.doc.Selected()
	if !ok {
		m.notice = mindmap.ErrNoSelection.Error()
		return m
	}
	if err := m.doc.Resize(id, delta); err != nil {
		m.notice = err.Error()
	}
	return m
}

// hit returns the innermost circle containing the world point. The scene
// lists circles parents-first, so the last match wins.
func (m editorModel) hit(x, y float64) (mindmap.NodeID, bool) {
	sc := scene.Build(m.doc)
	for i := len(sc.Circles) - 1; i >= 0; i-- {
		c := sc.Circles[i]
		dx, dy := x-c.X, y-c.Y
		if dx*dx+dy*dy <= c.R*c.R {
			return c.ID, true
		}
	}
	return 0, false
}

// centerView pans so the document midpoint sits at the viewport center.
func (m editorModel) centerView() editorModel {
	if m.doc.Len() == 0 {
		m.panX, m.panY = 0, 0
		return m
	}
	sc := scene.Build(m.doc)
	m.panX = (sc.MinX+sc.MaxX)/2 - float64(m.width)*unitX/2
	m.panY = (sc.MinY+sc.MaxY)/2 - float64(m.canvasHeight())*unitY/2
	return m
}

// canvasHeight leaves two rows for the status and help lines.
func (m editorModel) canvasHeight() int {
	if m.height <= 2 {
		return 1
	}
	return m.height - 2
}

func (m editorModel) View() string {
	cv := newCanvas(m.width, m.canvasHeight())
	sc := scene.Build(m.doc)
	for _, a := range sc.Arrows {
		cv.drawArrow(m.panX, m.panY, a.X1, a.Y1, a.X2, a.Y2)
	}
	for _, c := range sc.Circles {
		ring := 'o'
		if c.Selected {
			ring = '#'
		}
		cv.drawCircle(m.panX, m.panY, c.X, c.Y, c.R, ring)
	}
	for _, c := range sc.Circles {
		cv.drawLabel(m.panX, m.panY, c.LabelX, c.LabelY, c.Label)
	}
	if sc.Empty() {
		hx := m.panX + float64(m.width)/2*unitX
		hy := m.panY + float64(m.canvasHeight())/2*unitY
		cv.drawLabel(m.panX, m.panY, hx, hy, "press r to add a root")
	}

	rows := cv.lines()
	if m.modal != modalNone {
		rows = m.overlayModal(rows)
	}
	return strings.Join(rows, "\n") + "\n" + m.statusView() + "\n" + m.helpView()
}

func (m editorModel) modalTitle() string {
	switch m.modal {
	case modalRoot:
		return "Add root"
	case modalChild:
		return "Add child"
	case modalParent:
		return "Insert parent"
	}
	return ""
}

// overlayModal splices the input box over the canvas rows. The canvas
// carries no ANSI sequences, so slicing its rows by rune is safe.
func (m editorModel) overlayModal(rows []string) []string {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorCyan).
		Padding(1, 2).
		Render(StyleTitle.Render(m.modalTitle()) + "\n\n" + m.input.View() + "\n\n" + StyleDim.Render("enter: save   esc: cancel"))

	boxRows := strings.Split(box, "\n")
	boxW := lipgloss.Width(box)
	left := (m.width - boxW) / 2
	if left < 0 {
		left = 0
	}
	top := (len(rows) - len(boxRows)) / 2
	if top < 0 {
		top = 0
	}
	for i, br := range boxRows {
		y := top + i
		if y >= len(rows) {
			break
		}
		row := []rune(rows[y])
		var b strings.Builder
		if left <= len(row) {
			b.WriteString(string(row[:left]))
		} else {
			b.WriteString(string(row))
			b.WriteString(strings.Repeat(" ", left-len(row)))
		}
		b.WriteString(br)
		if right := left + boxW; right < len(row) {
			b.WriteString(string(row[right:]))
		}
		rows[y] = b.String()
	}
	return rows
}

func (m editorModel) statusView() string {
	s := StyleTitle.Render(m.name) + StyleDim.Render(fmt.Sprintf("  %d nodes", m.doc.Len()))
	if id, ok := m.doc.Selected(); ok {
		if n, found := m.doc.Node(id); found {
			s += StyleHighlight.Render("  [" + n.Label + "]")
		}
	}
	switch {
	case m.save.err != nil:
		s += StyleError.Render("  save failed: " + m.save.err.Error())
	case m.notice != "":
		s += StyleWarning.Render("  " + m.notice)
	}
	return s
}

func (m editorModel) helpView() string {
	return StyleDim.Render("r root  c child  p parent  d delete  +/- resize  click select  drag move  hjkl pan  q quit")
}
