package state

import "testing"

// recordingState logs its lifecycle hooks.
type recordingState struct {
	Base
	entered int
	exited  int
	updated int
}

func newRecordingState(name string) *recordingState {
	return &recordingState{Base: Base{StateName: name}}
}

func (s *recordingState) OnEnter()  { s.entered++ }
func (s *recordingState) OnExit()   { s.exited++ }
func (s *recordingState) OnUpdate() { s.updated++ }

func TestBaseMachine_InitialState(t *testing.T) {
	initial := newRecordingState("idle")
	machine := NewBaseMachine(initial)

	if machine.Current() != initial {
		t.Error("Current must be the initial state")
	}
	if initial.entered != 1 {
		t.Errorf("Initial OnEnter fired %d times, want 1", initial.entered)
	}
}

func TestBaseMachine_ChangeState(t *testing.T) {
	idle := newRecordingState("idle")
	running := newRecordingState("running")
	machine := NewBaseMachine(idle)

	if err := machine.ChangeState(running); err != nil {
		t.Fatalf("ChangeState failed: %v", err)
	}
	if machine.Current() != running {
		t.Error("Current must be the new state")
	}
	if idle.exited != 1 {
		t.Errorf("Old state OnExit fired %d times, want 1", idle.exited)
	}
	if running.entered != 1 {
		t.Errorf("New state OnEnter fired %d times, want 1", running.entered)
	}
}

func TestBaseMachine_TransitionCondition(t *testing.T) {
	idle := newRecordingState("idle")
	running := newRecordingState("running")
	machine := NewBaseMachine(idle)

	allowed := false
	if err := machine.AddTransition(idle, running, func() bool { return allowed }); err != nil {
		t.Fatalf("AddTransition failed: %v", err)
	}

	if err := machine.ChangeState(running); err != ErrTransitionNotAllowed {
		t.Errorf("Blocked transition = %v, want ErrTransitionNotAllowed", err)
	}
	if machine.Current() != idle {
		t.Error("A blocked transition must not change the state")
	}
	if running.entered != 0 {
		t.Error("A blocked transition must not enter the target state")
	}

	allowed = true
	if err := machine.ChangeState(running); err != nil {
		t.Fatalf("Allowed transition failed: %v", err)
	}
	if machine.Current() != running {
		t.Error("Current must be the new state once the condition holds")
	}
}

func TestBaseMachine_UnregisteredTransitionIsAllowed(t *testing.T) {
	idle := newRecordingState("idle")
	running := newRecordingState("running")
	machine := NewBaseMachine(idle)

	if err := machine.ChangeState(running); err != nil {
		t.Errorf("Transition without a registered condition = %v, want nil", err)
	}
}

func TestBase_Defaults(t *testing.T) {
	base := &Base{StateName: "warmup"}
	if base.Name() != "warmup" {
		t.Errorf("Name = %s, want warmup", base.Name())
	}
	// Default hooks are no-ops.
	base.OnEnter()
	base.OnExit()
	base.OnUpdate()
}
