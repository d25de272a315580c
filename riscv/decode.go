package riscv

// decoded holds the fixed RV32 instruction fields extracted from a
// 32-bit instruction word (spec section 4.E). Immediates are already
// sign- (or zero-, for U) extended to 32 bits.
type decoded struct {
	raw    uint32
	opcode uint32
	rd     uint32
	funct3 uint32
	rs1    uint32
	rs2    uint32
	funct7 uint32
	shamt  uint32

	iImm uint32
	sImm uint32
	bImm uint32
	uImm uint32
	jImm uint32
}

func decode(inst uint32) decoded {
	d := decoded{
		raw:    inst,
		opcode: inst & 0x7F,
		rd:     (inst >> 7) & 0x1F,
		funct3: (inst >> 12) & 0x7,
		rs1:    (inst >> 15) & 0x1F,
		rs2:    (inst >> 20) & 0x1F,
		funct7: (inst >> 25) & 0x7F,
	}
	d.shamt = d.rs2

	d.iImm = signExtend(inst>>20, 12)

	sBits := ((inst >> 25) << 5) | ((inst >> 7) & 0x1F)
	d.sImm = signExtend(sBits, 12)

	bBits := (((inst >> 31) & 1) << 12) |
		(((inst >> 7) & 1) << 11) |
		(((inst >> 25) & 0x3F) << 5) |
		(((inst >> 8) & 0xF) << 1)
	d.bImm = signExtend(bBits, 13)

	d.uImm = inst & 0xFFFFF000

	jBits := (((inst >> 31) & 1) << 20) |
		(((inst >> 12) & 0xFF) << 12) |
		(((inst >> 20) & 1) << 11) |
		(((inst >> 21) & 0x3FF) << 1)
	d.jImm = signExtend(jBits, 21)

	return d
}

// signExtend treats the low `bits` bits of v as a two's-complement
// integer and sign-extends it to the full 32 bits.
func signExtend(v uint32, bits uint) uint32 {
	shift := 32 - bits
	return uint32(int32(v<<shift) >> shift)
}
