package cpu

// Flag masks written by each class of ALU operation.
const (
	flagsArith = FlagZ | FlagAC | FlagCY
	flagsLogic = FlagZ
	flagsIncr  = FlagZ | FlagAC
)

func zero(r byte) byte {
	if r == 0 {
		return FlagZ
	}
	return 0
}

// add returns a+b+cy and the Z, AC and CY it produces.
func add(a, b, cy byte) (byte, byte) {
	sum := uint(a) + uint(b) + uint(cy)
	r := byte(sum)
	f := zero(r)
	if uint(a&0x0F)+uint(b&0x0F)+uint(cy) > 0x0F {
		f |= FlagAC
	}
	if sum > 0xFF {
		f |= FlagCY
	}
	return r, f
}

// sub returns a-b-cy and the Z, AC and CY (borrows) it produces.
func sub(a, b, cy byte) (byte, byte) {
	diff := int(a) - int(b) - int(cy)
	r := byte(diff)
	f := zero(r)
	if int(a&0x0F)-int(b&0x0F)-int(cy) < 0 {
		f |= FlagAC
	}
	if diff < 0 {
		f |= FlagCY
	}
	return r, f
}

// addw returns a+b with Z and CY. AC is always clear for word operations.
func addw(a, b uint16) (uint16, byte) {
	sum := uint32(a) + uint32(b)
	r := uint16(sum)
	var f byte
	if r == 0 {
		f |= FlagZ
	}
	if sum > 0xFFFF {
		f |= FlagCY
	}
	return r, f
}

// subw returns a-b with Z and CY. AC is always clear for word operations.
func subw(a, b uint16) (uint16, byte) {
	r := a - b
	var f byte
	if r == 0 {
		f |= FlagZ
	}
	if a < b {
		f |= FlagCY
	}
	return r, f
}

// inc returns v+1 with Z and AC. CY is not affected by INC.
func inc(v byte) (byte, byte) {
	r := v + 1
	f := zero(r)
	if v&0x0F == 0x0F {
		f |= FlagAC
	}
	return r, f
}

// dec returns v-1 with Z and AC. AC is set when the low nibble borrows.
func dec(v byte) (byte, byte) {
	r := v - 1
	f := zero(r)
	if v&0x0F == 0 {
		f |= FlagAC
	}
	return r, f
}

// adjba is the decimal adjust after addition. psw supplies the incoming CY
// and AC; the returned flags hold Z, AC and CY.
func adjba(a, psw byte) (byte, byte) {
	cy := psw&FlagCY != 0
	ac := psw&FlagAC != 0
	hi := a >> 4
	lo := a & 0x0F

	var adj, f byte
	switch {
	case !ac && lo <= 9:
		if hi <= 9 && !cy {
			adj = 0x00
		} else {
			adj, f = 0x60, FlagCY
		}
	case !ac:
		if hi < 9 && !cy {
			adj, f = 0x06, FlagAC
		} else {
			adj, f = 0x66, FlagCY|FlagAC
		}
	default:
		if hi <= 9 && !cy {
			adj = 0x06
		} else {
			adj, f = 0x66, FlagCY
		}
	}
	r := a + adj
	return r, f | zero(r)
}

// adjbs is the decimal adjust after subtraction. AC is always left clear.
func adjbs(a, psw byte) (byte, byte) {
	var adj, f byte
	switch psw & (FlagCY | FlagAC) {
	case 0:
		adj = 0x00
	case FlagAC:
		adj = 0x06
	case FlagCY:
		adj, f = 0x60, FlagCY
	default:
		adj, f = 0x66, FlagCY
	}
	r := a - adj
	return r, f | zero(r)
}
