package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/MrJamesThe3rd/ecolefin/internal/period"
)

// PeriodSelectedMsg is emitted once the user has picked a period that resolves.
type PeriodSelectedMsg struct {
	Descriptor period.Descriptor
	Range      period.Range
}

type pickerState int

const (
	pickerStateSelect pickerState = iota
	pickerStateCustom
)

// PeriodPicker lets the user choose one of the fixed periods or a custom range.
type PeriodPicker struct {
	resolver *period.Resolver
	kinds    []period.Kind

	state    pickerState
	selected int

	startInput textinput.Model
	endInput   textinput.Model
	focusIndex int

	err error
}

func NewPeriodPicker(resolver *period.Resolver) PeriodPicker {
	si := textinput.New()
	si.Placeholder = "YYYY-MM-DD"
	si.CharLimit = 16
	si.Width = 18
	si.Prompt = "Début: "

	ei := textinput.New()
	ei.Placeholder = "YYYY-MM-DD"
	ei.CharLimit = 16
	ei.Width = 18
	ei.Prompt = "Fin:   "

	return PeriodPicker{
		resolver:   resolver,
		kinds:      append(period.Kinds(), period.KindCustom),
		selected:   2, // month
		startInput: si,
		endInput:   ei,
	}
}

func (m PeriodPicker) Init() tea.Cmd {
	return nil
}

func (m PeriodPicker) Update(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch m.state {
		case pickerStateSelect:
			return m.updateSelect(keyMsg)
		case pickerStateCustom:
			if next, cmd, handled := m.updateCustom(keyMsg); handled {
				return next, cmd
			}
		}
	}

	if m.state == pickerStateCustom {
		return m.updateInputs(msg)
	}

	return m, nil
}

func (m PeriodPicker) updateSelect(msg tea.KeyMsg) (PeriodPicker, tea.Cmd) {
	switch msg.Type {
	case tea.KeyUp:
		if m.selected > 0 {
			m.selected--
		}
	case tea.KeyDown:
		if m.selected < len(m.kinds)-1 {
			m.selected++
		}
	case tea.KeyEnter:
		kind := m.kinds[m.selected]
		if kind == period.KindCustom {
			m.state = pickerStateCustom
			m.focusIndex = 0
			m.startInput.Focus()

			return m, textinput.Blink
		}

		return m.emit(period.Descriptor{Period: kind})
	}

	return m, nil
}

func (m PeriodPicker) updateCustom(msg tea.KeyMsg) (PeriodPicker, tea.Cmd, bool) {
	switch msg.String() {
	case "tab", "shift+tab":
		m.focusIndex = (m.focusIndex + 1) % 2
		m.startInput.Blur()
		m.endInput.Blur()

		if m.focusIndex == 0 {
			m.startInput.Focus()
		} else {
			m.endInput.Focus()
		}

		return m, textinput.Blink, true

	case "enter":
		next, cmd := m.emit(period.Descriptor{
			Period:    period.KindCustom,
			StartDate: m.startInput.Value(),
			EndDate:   m.endInput.Value(),
		})

		return next, cmd, true

	case "esc":
		m.state = pickerStateSelect
		m.err = nil

		return m, nil, true
	}

	return m, nil, false
}

func (m PeriodPicker) emit(d period.Descriptor) (PeriodPicker, tea.Cmd) {
	rng, err := m.resolver.Resolve(d)
	if err != nil {
		m.err = err
		return m, nil
	}

	m.err = nil

	return m, func() tea.Msg {
		return PeriodSelectedMsg{Descriptor: d, Range: rng}
	}
}

func (m PeriodPicker) updateInputs(msg tea.Msg) (PeriodPicker, tea.Cmd) {
	var cmds []tea.Cmd
	var c tea.Cmd

	m.startInput, c = m.startInput.Update(msg)
	cmds = append(cmds, c)
	m.endInput, c = m.endInput.Update(msg)
	cmds = append(cmds, c)

	return m, tea.Batch(cmds...)
}

func (m PeriodPicker) View() string {
	errStr := ""
	if m.err != nil {
		errStr = errorStyle(fmt.Sprintf("\n\nErreur: %v", m.err))
	}

	if m.state == pickerStateCustom {
		return fmt.Sprintf(
			"Période personnalisée:\n\n%s\n%s\n\n(Enter pour valider, Tab pour changer de champ, Esc pour revenir)%s",
			m.startInput.View(),
			m.endInput.View(),
			errStr,
		)
	}

	s := "Choisir la période:\n\n"
	for i, k := range m.kinds {
		cursor := " "
		if m.selected == i {
			cursor = ">"
		}

		s += fmt.Sprintf("%s %s\n", cursor, k.Label())
	}

	s += "\n(Enter pour choisir, Esc pour revenir)"

	return s + errStr
}

// IsSelecting reports whether the picker shows the period list rather than the custom inputs.
func (m PeriodPicker) IsSelecting() bool {
	return m.state == pickerStateSelect
}

func (m *PeriodPicker) Reset() {
	m.state = pickerStateSelect
	m.err = nil
	m.startInput.SetValue("")
	m.endInput.SetValue("")
}
