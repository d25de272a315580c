package riscv

import "testing"

func TestResetState(t *testing.T) {
	m := NewMachine()
	if m.pc != ROMStart {
		t.Fatalf("pc = 0x%X, want 0x%X", m.pc, ROMStart)
	}
	if m.damage != (Rect{0, 0, m.fbWidth - 1, m.fbHeight - 1}) {
		t.Fatalf("reset damage = %+v, want full screen", m.damage)
	}
	for i := 0; i < NumRegs; i++ {
		if m.registers[i] != 0 {
			t.Fatalf("register %d = %d at reset, want 0", i, m.registers[i])
		}
	}
}

// Scenario 1: boot fetch comes from ROM at ROMStart.
func TestBootFetch(t *testing.T) {
	m := NewMachine()
	if _, err := m.Execute(1); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if m.InstrCount() != 1 {
		t.Fatalf("InstrCount = %d, want 1", m.InstrCount())
	}
}

// Scenario 2: ADDI chain.
func TestADDIChain(t *testing.T) {
	m := NewMachine()
	m.pc = 0
	m.ram[0] = 0x00700093 // ADDI x1, x0, 7
	m.ram[1] = 0xFFD08113 // ADDI x2, x1, -3
	if _, err := m.Execute(3); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if m.Register(1) != 7 {
		t.Fatalf("x1 = %d, want 7", m.Register(1))
	}
	if m.Register(2) != 4 {
		t.Fatalf("x2 = %d, want 4", m.Register(2))
	}
}

// Scenario 3: sub-word store performs a read-modify-write of the
// containing word.
func TestSubWordStore(t *testing.T) {
	m := NewMachine()
	m.pc = 4
	m.ram[0] = 0xDEADBEEF
	m.ram[1] = 0x003000A3 // SB x3, 1(x0)
	m.registers[3] = 0x5A
	if _, err := m.Execute(1); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if m.ram[0] != 0xDEAD5AEF {
		t.Fatalf("ram[0] = 0x%08X, want 0xDEAD5AEF", m.ram[0])
	}
}

// Scenario 4: JAL x0,0 signals termination.
func TestJALHaltSignalsTermination(t *testing.T) {
	m := NewMachine()
	m.pc = 0
	m.ram[0] = 0x0000006F
	res, err := m.Execute(1)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !res.Terminated {
		t.Fatalf("res.Terminated = false, want true")
	}
}

// Scenario 5: damage accumulates in word coordinates and take_damage
// resets to the empty sentinel.
func TestDamageScenario(t *testing.T) {
	m := NewMachine()
	m.TakeDamage() // discard the reset full-screen damage
	addr := m.displayStart + 4*(32*10+5)
	m.Store(addr, 0xFFFFFFFF)
	got := m.TakeDamage()
	if got != (Rect{X1: 5, Y1: 10, X2: 5, Y2: 10}) {
		t.Fatalf("damage = %+v, want (5,10,5,10)", got)
	}
	got = m.TakeDamage()
	want := Rect{X1: m.fbWidth, Y1: m.fbHeight, X2: 0, Y2: 0}
	if got != want {
		t.Fatalf("second damage = %+v, want %+v", got, want)
	}
}

// Scenario 6: call-trace protocol.
func TestTraceProtocol(t *testing.T) {
	m := NewMachine()
	m.writeIO(IOStart+ioTrace, 0xAA000041) // 'A'
	m.writeIO(IOStart+ioTrace, 0xAA000042) // 'B'
	m.writeIO(IOStart+ioTrace, 0xCC000064) // pos=100, push
	if m.TraceDepth() != 1 {
		t.Fatalf("TraceDepth = %d, want 1", m.TraceDepth())
	}
	if got := m.trace[0]; got.file != "AB" || got.pos != 100 {
		t.Fatalf("frame = %+v, want file=AB pos=100", got)
	}
	m.writeIO(IOStart+ioTrace, 0) // pop
	if m.TraceDepth() != 0 {
		t.Fatalf("TraceDepth after pop = %d, want 0", m.TraceDepth())
	}
}

func TestMouseRoundTrip(t *testing.T) {
	m := NewMachine()
	m.MouseMoved(100, 200)
	v := m.readIO(IOStart + ioMouseKbd)
	if v&0xFFF != 100 {
		t.Fatalf("x = %d, want 100", v&0xFFF)
	}
	if (v>>12)&0xFFF != 200 {
		t.Fatalf("y = %d, want 200", (v>>12)&0xFFF)
	}
}

func TestMouseButtonRange(t *testing.T) {
	m := NewMachine()
	if err := m.MouseButton(0, true); err == nil {
		t.Fatalf("expected error for button 0")
	}
	if err := m.MouseButton(4, true); err == nil {
		t.Fatalf("expected error for button 4")
	}
	if err := m.MouseButton(1, true); err != nil {
		t.Fatalf("MouseButton(1): %v", err)
	}
	v := m.readIO(IOStart + ioMouseKbd)
	if v&(1<<26) == 0 {
		t.Fatalf("button 1 bit not set: 0x%X", v)
	}
}

func TestKeyboardRoundTrip(t *testing.T) {
	m := NewMachine()
	m.KeyboardInput([]byte{1, 2, 3})
	for _, want := range []byte{1, 2, 3} {
		got := m.readIO(IOStart + ioKbdPop)
		if got != uint32(want) {
			t.Fatalf("pop = %d, want %d", got, want)
		}
	}
	if got := m.readIO(IOStart + ioKbdPop); got != 0 {
		t.Fatalf("pop past end = %d, want 0", got)
	}
}

func TestKeyboardOverflowDropped(t *testing.T) {
	m := NewMachine()
	full := make([]byte, keyboardCapacity)
	m.KeyboardInput(full)
	m.KeyboardInput([]byte{9}) // would overflow, whole batch dropped
	if m.keyLen != keyboardCapacity {
		t.Fatalf("keyLen = %d, want %d", m.keyLen, keyboardCapacity)
	}
}

func TestREMEuclidean(t *testing.T) {
	cases := []struct{ a, b, want int32 }{
		{7, 3, 1},
		{-7, 3, 2},
		{7, -3, -2},
		{-7, -3, -1},
	}
	m := NewMachine()
	for _, c := range cases {
		got := int32(m.execMulDivRem(0b110, uint32(c.a), uint32(c.b)))
		if got != c.want {
			t.Errorf("REM(%d,%d) = %d, want %d", c.a, c.b, got, c.want)
		}
		if c.b > 0 && (got < 0 || got >= c.b) {
			t.Errorf("REM(%d,%d) = %d violates 0<=r<b", c.a, c.b, got)
		}
	}
}

func TestDIVByZero(t *testing.T) {
	m := NewMachine()
	got := m.execMulDivRem(0b100, 5, 0)
	if got != 0xFFFFFFFF {
		t.Fatalf("DIV by zero = 0x%X, want 0xFFFFFFFF", got)
	}
}

func TestDIVU(t *testing.T) {
	m := NewMachine()
	if got := m.execMulDivRem(0b101, 20, 6); got != 3 {
		t.Fatalf("DIVU(20,6) = %d, want 3", got)
	}
	// 0xFFFFFFFF as unsigned is the largest uint32, not -1.
	if got := m.execMulDivRem(0b101, 0xFFFFFFFF, 2); got != 0x7FFFFFFF {
		t.Fatalf("DIVU(0xFFFFFFFF,2) = 0x%X, want 0x7FFFFFFF", got)
	}
}

func TestDIVUByZero(t *testing.T) {
	m := NewMachine()
	if got := m.execMulDivRem(0b101, 5, 0); got != 0xFFFFFFFF {
		t.Fatalf("DIVU by zero = 0x%X, want 0xFFFFFFFF", got)
	}
}

func TestREMU(t *testing.T) {
	m := NewMachine()
	if got := m.execMulDivRem(0b111, 20, 6); got != 2 {
		t.Fatalf("REMU(20,6) = %d, want 2", got)
	}
}

func TestREMUByZero(t *testing.T) {
	m := NewMachine()
	if got := m.execMulDivRem(0b111, 42, 0); got != 42 {
		t.Fatalf("REMU by zero = %d, want dividend 42", got)
	}
}

func TestMULH(t *testing.T) {
	m := NewMachine()
	// -1 * -1 = 1, high word is 0.
	if got := m.execMulDivRem(0b001, 0xFFFFFFFF, 0xFFFFFFFF); got != 0 {
		t.Fatalf("MULH(-1,-1) = 0x%X, want 0", got)
	}
	// minInt32 * minInt32 = 2^62, high word = 0x40000000.
	if got := m.execMulDivRem(0b001, 0x80000000, 0x80000000); got != 0x40000000 {
		t.Fatalf("MULH(minInt32,minInt32) = 0x%X, want 0x40000000", got)
	}
}

func TestMULHSU(t *testing.T) {
	m := NewMachine()
	// -1 (signed) * 2 (unsigned) = -2; high word of the 64-bit result is
	// all ones.
	if got := m.execMulDivRem(0b010, 0xFFFFFFFF, 2); got != 0xFFFFFFFF {
		t.Fatalf("MULHSU(-1,2) = 0x%X, want 0xFFFFFFFF", got)
	}
}

func TestMULHU(t *testing.T) {
	m := NewMachine()
	// 0xFFFFFFFF * 0xFFFFFFFF = 0xFFFFFFFE00000001, high word 0xFFFFFFFE.
	if got := m.execMulDivRem(0b011, 0xFFFFFFFF, 0xFFFFFFFF); got != 0xFFFFFFFE {
		t.Fatalf("MULHU(-1,-1 unsigned) = 0x%X, want 0xFFFFFFFE", got)
	}
}

func TestX0AlwaysZero(t *testing.T) {
	m := NewMachine()
	m.pc = 0
	m.ram[0] = 0x00700003 // LB x0, 7(x0) -- writes to x0, must stay 0
	if _, err := m.Execute(1); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if m.Register(0) != 0 {
		t.Fatalf("x0 = %d, want 0", m.Register(0))
	}
}

func TestSPISelectorRange(t *testing.T) {
	m := NewMachine()
	m.writeIO(IOStart+ioSPICtrl, 0xFFFFFFFF)
	if m.spiSelect > 3 {
		t.Fatalf("spiSelect = %d, out of range", m.spiSelect)
	}
}
