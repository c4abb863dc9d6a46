package server

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Pointer is a remote pointer sample in workspace pixels.
type Pointer struct {
	X, Y    int
	Contact bool
}

// State is the workspace state as reported by GetState.
type State struct {
	Tick       uint64
	Title      string
	DualScreen bool
	Mirrored   bool
	Word       uint16
	Active     []int
	Pressed    []string
	Width      int
	Height     int
	// BackgroundWidth is what the remote hotspot grid is centred on.
	BackgroundWidth int
}

func (p Pointer) toStruct() *structpb.Struct {
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"x":       structpb.NewNumberValue(float64(p.X)),
		"y":       structpb.NewNumberValue(float64(p.Y)),
		"contact": structpb.NewBoolValue(p.Contact),
	}}
}

func pointerFromStruct(s *structpb.Struct) (Pointer, error) {
	fields := s.GetFields()
	x, ok := fields["x"]
	if !ok {
		return Pointer{}, fmt.Errorf("pointer: missing x")
	}
	y, ok := fields["y"]
	if !ok {
		return Pointer{}, fmt.Errorf("pointer: missing y")
	}
	if _, ok := x.GetKind().(*structpb.Value_NumberValue); !ok {
		return Pointer{}, fmt.Errorf("pointer: x is not a number")
	}
	if _, ok := y.GetKind().(*structpb.Value_NumberValue); !ok {
		return Pointer{}, fmt.Errorf("pointer: y is not a number")
	}
	return Pointer{
		X:       int(x.GetNumberValue()),
		Y:       int(y.GetNumberValue()),
		Contact: fields["contact"].GetBoolValue(),
	}, nil
}

func (st State) toStruct() *structpb.Struct {
	active := make([]*structpb.Value, len(st.Active))
	for i, a := range st.Active {
		active[i] = structpb.NewNumberValue(float64(a))
	}
	pressed := make([]*structpb.Value, len(st.Pressed))
	for i, p := range st.Pressed {
		pressed[i] = structpb.NewStringValue(p)
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"tick":        structpb.NewNumberValue(float64(st.Tick)),
		"title":       structpb.NewStringValue(st.Title),
		"dual_screen": structpb.NewBoolValue(st.DualScreen),
		"mirrored":    structpb.NewBoolValue(st.Mirrored),
		"word":        structpb.NewNumberValue(float64(st.Word)),
		"active":      structpb.NewListValue(&structpb.ListValue{Values: active}),
		"pressed":     structpb.NewListValue(&structpb.ListValue{Values: pressed}),
		"width":       structpb.NewNumberValue(float64(st.Width)),
		"height":      structpb.NewNumberValue(float64(st.Height)),

		"background_width": structpb.NewNumberValue(float64(st.BackgroundWidth)),
	}}
}

func stateFromStruct(s *structpb.Struct) State {
	f := s.GetFields()
	st := State{
		Tick:       uint64(f["tick"].GetNumberValue()),
		Title:      f["title"].GetStringValue(),
		DualScreen: f["dual_screen"].GetBoolValue(),
		Mirrored:   f["mirrored"].GetBoolValue(),
		Word:       uint16(f["word"].GetNumberValue()),
		Width:      int(f["width"].GetNumberValue()),
		Height:     int(f["height"].GetNumberValue()),

		BackgroundWidth: int(f["background_width"].GetNumberValue()),
	}
	for _, v := range f["active"].GetListValue().GetValues() {
		st.Active = append(st.Active, int(v.GetNumberValue()))
	}
	for _, v := range f["pressed"].GetListValue().GetValues() {
		st.Pressed = append(st.Pressed, v.GetStringValue())
	}
	return st
}
