package aes128

// The 128-bit state is a 4x4 byte grid filled column by column, so byte i
// of a block lands at row i%4, column i/4 (FIPS-197 section 3.4).
type state [4][4]byte

func loadState(in []byte) state {
	var s state
	for i := 0; i < BlockSize; i++ {
		s[i%4][i/4] = in[i]
	}
	return s
}

func (s *state) store(out []byte) {
	for i := 0; i < BlockSize; i++ {
		out[i] = s[i%4][i/4]
	}
}

// mul multiplies b and c as GF(2) polynomials modulo poly.
func mul(b, c uint32) uint32 {
	i := b
	j := c
	s := uint32(0)
	for k := uint32(1); k < 0x100 && j != 0; k <<= 1 {
		if j&k != 0 {
			s ^= i
			j ^= k
		}
		i <<= 1
		if i&0x100 != 0 {
			i ^= poly
		}
	}
	return s
}

func (s *state) addRoundKey(rk []byte) {
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			s[row][col] ^= rk[4*col+row]
		}
	}
}

func (s *state) subBytes() {
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			s[row][col] = sbox0[s[row][col]]
		}
	}
}

func (s *state) invSubBytes() {
	for row := 0; row < 4; row++ {
		for col := 0; col < 4; col++ {
			s[row][col] = sbox1[s[row][col]]
		}
	}
}

// shiftRows rotates row r left by r positions.
func (s *state) shiftRows() {
	for row := 1; row < 4; row++ {
		r := s[row]
		for col := 0; col < 4; col++ {
			s[row][col] = r[(col+row)%4]
		}
	}
}

func (s *state) invShiftRows() {
	for row := 1; row < 4; row++ {
		r := s[row]
		for col := 0; col < 4; col++ {
			s[row][(col+row)%4] = r[col]
		}
	}
}

// mixColumns multiplies each column by the fixed polynomial
// {03}x^3 + {01}x^2 + {01}x + {02} over GF(2^8).
func (s *state) mixColumns() {
	for col := 0; col < 4; col++ {
		a0 := uint32(s[0][col])
		a1 := uint32(s[1][col])
		a2 := uint32(s[2][col])
		a3 := uint32(s[3][col])
		s[0][col] = byte(mul(a0, 2) ^ mul(a1, 3) ^ a2 ^ a3)
		s[1][col] = byte(a0 ^ mul(a1, 2) ^ mul(a2, 3) ^ a3)
		s[2][col] = byte(a0 ^ a1 ^ mul(a2, 2) ^ mul(a3, 3))
		s[3][col] = byte(mul(a0, 3) ^ a1 ^ a2 ^ mul(a3, 2))
	}
}

func (s *state) invMixColumns() {
	for col := 0; col < 4; col++ {
		a0 := uint32(s[0][col])
		a1 := uint32(s[1][col])
		a2 := uint32(s[2][col])
		a3 := uint32(s[3][col])
		s[0][col] = byte(mul(a0, 0xe) ^ mul(a1, 0xb) ^ mul(a2, 0xd) ^ mul(a3, 0x9))
		s[1][col] = byte(mul(a0, 0x9) ^ mul(a1, 0xe) ^ mul(a2, 0xb) ^ mul(a3, 0xd))
		s[2][col] = byte(mul(a0, 0xd) ^ mul(a1, 0x9) ^ mul(a2, 0xe) ^ mul(a3, 0xb))
		s[3][col] = byte(mul(a0, 0xb) ^ mul(a1, 0xd) ^ mul(a2, 0x9) ^ mul(a3, 0xe))
	}
}

func encryptBlock(rk []byte, dst, src []byte) {
	s := loadState(src)
	s.addRoundKey(rk[0:16])
	for round := 1; round < numRounds; round++ {
		s.subBytes()
		s.shiftRows()
		s.mixColumns()
		s.addRoundKey(rk[16*round : 16*round+16])
	}
	s.subBytes()
	s.shiftRows()
	s.addRoundKey(rk[16*numRounds:])
	s.store(dst)
}

func decryptBlock(rk []byte, dst, src []byte) {
	s := loadState(src)
	s.addRoundKey(rk[16*numRounds:])
	for round := numRounds - 1; round > 0; round-- {
		s.invShiftRows()
		s.invSubBytes()
		s.addRoundKey(rk[16*round : 16*round+16])
		s.invMixColumns()
	}
	s.invShiftRows()
	s.invSubBytes()
	s.addRoundKey(rk[0:16])
	s.store(dst)
}
