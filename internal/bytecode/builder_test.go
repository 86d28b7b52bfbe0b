package bytecode

import (
	"testing"

	"github.com/corvidlang/corvid/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadLocalSpecialization is scenario S1: slots 0-3 get their
// dedicated zero-operand opcode, slot 4 gets the u8 form, slot 256 gets
// the u16 wide form.
func TestLoadLocalSpecialization(t *testing.T) {
	b := NewCodeBuilder()
	for _, slot := range []uint16{0, 1, 2, 3, 4, 256} {
		b.EmitLoadLocal(slot)
	}
	code := b.Build(300)

	expected := []byte{
		byte(LoadLocal0),
		byte(LoadLocal1),
		byte(LoadLocal2),
		byte(LoadLocal3),
		byte(LoadLocal), 4,
		byte(LoadLocalW), 0x00, 0x01,
	}
	assert.Equal(t, expected, code.Bytecode)
}

// TestForwardJumpPatching is scenario S2: EmitJump reserves a
// placeholder, PatchJump backfills the correct relative offset once the
// jump target is known.
func TestForwardJumpPatching(t *testing.T) {
	b := NewCodeBuilder()
	b.Emit(LoadTrue)
	label := b.EmitJump(JumpIfFalse)
	b.Emit(LoadNone) // the "then" body, 1 byte
	require.NoError(t, b.PatchJump(label))
	b.Emit(ReturnValue)

	code := b.Build(0)
	// LoadTrue(1) + JumpIfFalse(3) + LoadNone(1) + ReturnValue(1)
	require.Len(t, code.Bytecode, 6)
	jumpPos := 1
	off := int16(uint16(code.Bytecode[jumpPos+1]) | uint16(code.Bytecode[jumpPos+2])<<8)
	// PatchJump was called once LoadNone had already been emitted (byte
	// offset 5, ReturnValue's start) — offset = 5 - (jumpPos+3).
	assert.Equal(t, int16(5-(jumpPos+3)), off)
}

// TestPeepholeCompareJumpFusion is scenario S3: CompareEq followed
// immediately by JumpIfFalse fuses into CompareEqJumpIfFalse + Nop, with
// the jump offset compensated by +1 for the fused opcode's earlier start.
func TestPeepholeCompareJumpFusion(t *testing.T) {
	b := NewCodeBuilder()
	b.EmitI8(LoadSmallInt, 1)
	b.EmitI8(LoadSmallInt, 1)
	b.Emit(CompareEq)
	label := b.EmitJump(JumpIfFalse)
	b.Emit(LoadNone)
	require.NoError(t, b.PatchJump(label))
	b.Emit(ReturnValue)

	code := b.Build(0)

	// CompareEq(1 byte) + JumpIfFalse(3 bytes) fuse into
	// CompareEqJumpIfFalse(3 bytes) + Nop(1 byte) = still 4 bytes.
	assert.Equal(t, byte(CompareEqJumpIfFalse), code.Bytecode[4])
	assert.Equal(t, byte(Nop), code.Bytecode[7])

	// original offset was 1 (LoadNone sits immediately after the jump);
	// the fused opcode starts one byte earlier, so the compensated offset is 2.
	fusedOffset := int16(uint16(code.Bytecode[5]) | uint16(code.Bytecode[6])<<8)
	assert.Equal(t, int16(2), fusedOffset, "fused offset is the original offset + 1")
}

// TestPeepholeLoadSmallIntStoreLocalFusion is scenario S4: LoadSmallInt
// followed by StoreLocalN (slots 0-3) or StoreLocal(u8) fuses into
// StoreLocalSmallInt, with a trailing Nop for the u8 form (byte-length
// preserving).
func TestPeepholeLoadSmallIntStoreLocalFusion(t *testing.T) {
	b := NewCodeBuilder()
	b.EmitI8(LoadSmallInt, 7)
	b.EmitStoreLocal(2) // StoreLocal2, specialized zero-operand form
	code := b.Build(4)

	assert.Equal(t, []byte{byte(StoreLocalSmallInt), 2, 7}, code.Bytecode)

	b2 := NewCodeBuilder()
	b2.EmitI8(LoadSmallInt, 9)
	b2.EmitStoreLocal(40) // u8 form
	code2 := b2.Build(41)

	assert.Equal(t, []byte{byte(StoreLocalSmallInt), 40, 9, byte(Nop)}, code2.Bytecode)
}

// TestJumpRoundTrip is boundary #7: every jump offset written by
// PatchJump, when decoded relative to ip+3, lands exactly on the byte
// offset the builder intended.
func TestJumpRoundTrip(t *testing.T) {
	b := NewCodeBuilder()
	label := b.EmitJump(Jump)
	for i := 0; i < 10; i++ {
		b.Emit(Nop)
	}
	target := b.CurrentOffset()
	require.NoError(t, b.PatchJump(label))
	code := b.Build(0)

	off := int16(uint16(code.Bytecode[1]) | uint16(code.Bytecode[2])<<8)
	assert.Equal(t, target, 3+int(off))
}

// TestPatchJumpOverflowIsFatal is boundary #11: an offset exceeding the
// i16 range is rejected rather than silently truncated.
func TestPatchJumpOverflowIsFatal(t *testing.T) {
	b := NewCodeBuilder()
	label := b.EmitJump(Jump)
	for i := 0; i < 40000; i++ {
		b.Emit(Nop)
	}
	err := b.PatchJump(label)
	require.Error(t, err)
}

// TestAddConst65536thIsFatal is boundary #12: the constant pool rejects
// its 65536th entry.
func TestAddConst65536thIsFatal(t *testing.T) {
	b := NewCodeBuilder()
	var lastErr error
	for i := 0; i < 65535; i++ {
		_, lastErr = b.AddConst(value.Int(int64(i)))
		require.NoError(t, lastErr)
	}
	_, err := b.AddConst(value.Int(999))
	require.Error(t, err)
}

// TestProtectedJumpTargetBlocksFusion confirms a jump landing on the
// second instruction of what would otherwise be a fusable pair leaves
// that pair unfused, so the jump still lands on a real instruction
// boundary after the peephole pass.
func TestProtectedJumpTargetBlocksFusion(t *testing.T) {
	b := NewCodeBuilder()
	b.EmitI8(LoadSmallInt, 3) // offsets 0-1
	storeOffset := b.CurrentOffset()
	b.EmitStoreLocal(1) // StoreLocal1 at offset 2, the fusion candidate
	require.NoError(t, b.EmitJumpTo(Jump, storeOffset))
	code := b.Build(4)

	// Unfused: LoadSmallInt and StoreLocal1 remain distinct opcodes.
	assert.Equal(t, byte(LoadSmallInt), code.Bytecode[0])
	assert.Equal(t, byte(StoreLocal1), code.Bytecode[storeOffset])
}
