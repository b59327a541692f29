package verushash

// runSV22 is __verusclmulwithoutreduction64alignedrepeat_sv2_2: identical to
// sv2_1 except for three legacy compatibility quirks preserved bit-for-bit
// from the reference implementation (spec.md §9):
//
//  1. case 0x0c's even branch additionally folds pbuf[0] into acc.
//  2. case 0x18 swaps the final store order of prandex/prand, its modulo
//     branch XORs the buffer lane into onekey itself, and its CLMUL branch
//     reassigns onekey to the clmul product rather than keeping the loaded
//     round key.
//  3. case 0x1c additionally folds pbuf[∓1] into acc before the final
//     mulhrs stage.
func runSV22(ks *KeyStore, rawBuf [64]byte) lane {
	buf4 := loadBuf4(rawBuf)
	pbufCopy := [4]lane{
		xorLane(buf4[0], buf4[2]),
		xorLane(buf4[1], buf4[3]),
		buf4[2],
		buf4[3],
	}

	km := ks.keyMaskLanes()
	acc := ks.master[km+2]

	for i := 0; i < 32; i++ {
		selector := acc.cvtsi64()

		prandIdx := int((selector >> 5) & km)
		prandexIdx := int((selector >> 32) & km)
		ks.pushPair(prandIdx, prandexIdx)

		baseIdx := int(selector & 3)
		adjIdx := baseIdx ^ 1
		pbuf := pbufCopy[baseIdx]
		pbufAdj := pbufCopy[adjIdx]

		switch selector & 0x1c {
		case 0x00:
			temp1 := ks.master[prandexIdx]
			add1 := xorLane(temp1, pbufAdj)
			acc = xorLane(clmulSelect(add1, add1, 0x10), acc)

			tempa2 := xorLane(mulhrsEpi16(acc, temp1), temp1)

			temp12 := ks.master[prandIdx]
			ks.master[prandIdx] = tempa2

			add12 := xorLane(temp12, pbuf)
			acc = xorLane(clmulSelect(add12, add12, 0x10), acc)

			tempb2 := xorLane(mulhrsEpi16(acc, temp12), temp12)
			ks.master[prandexIdx] = tempb2

		case 0x04:
			temp1 := ks.master[prandIdx]
			temp2 := pbuf
			add1 := xorLane(temp1, temp2)
			acc = xorLane(clmulSelect(add1, add1, 0x10), acc)
			acc = xorLane(clmulSelect(temp2, temp2, 0x10), acc)

			tempa2 := xorLane(mulhrsEpi16(acc, temp1), temp1)

			temp12 := ks.master[prandexIdx]
			ks.master[prandexIdx] = tempa2

			add12 := xorLane(temp12, pbufAdj)
			acc = xorLane(add12, acc)

			tempb2 := xorLane(mulhrsEpi16(acc, temp12), temp12)
			ks.master[prandIdx] = tempb2

		case 0x08:
			temp1 := ks.master[prandexIdx]
			temp2 := pbuf
			add1 := xorLane(temp1, temp2)
			acc = xorLane(add1, acc)

			tempa2 := xorLane(mulhrsEpi16(acc, temp1), temp1)

			temp12 := ks.master[prandIdx]
			ks.master[prandIdx] = tempa2

			temp22 := pbufAdj
			add12 := xorLane(temp12, temp22)
			acc = xorLane(clmulSelect(add12, add12, 0x10), acc)
			acc = xorLane(clmulSelect(temp22, temp22, 0x10), acc)

			tempb2 := xorLane(mulhrsEpi16(acc, temp12), temp12)
			ks.master[prandexIdx] = tempb2

		case 0x0c:
			temp1 := ks.master[prandIdx]
			temp2 := pbufAdj
			add1 := xorLane(temp1, temp2)

			divisor := int32(uint32(selector))
			acc = xorLane(add1, acc)

			dividend := int64(acc.cvtsi64())
			modulo := laneFromI32(int32(dividend % int64(divisor)))
			acc = xorLane(modulo, acc)

			tempa2 := xorLane(mulhrsEpi16(acc, temp1), temp1)

			if dividend&1 != 0 {
				temp12 := ks.master[prandexIdx]
				ks.master[prandexIdx] = tempa2

				temp22 := pbuf
				add12 := xorLane(temp12, temp22)
				acc = xorLane(clmulSelect(add12, add12, 0x10), acc)
				acc = xorLane(clmulSelect(temp22, temp22, 0x10), acc)

				tempb2 := xorLane(mulhrsEpi16(acc, temp12), temp12)
				ks.master[prandIdx] = tempb2
			} else {
				tempb3 := ks.master[prandexIdx]
				ks.master[prandexIdx] = tempa2
				ks.master[prandIdx] = tempb3

				// legacy quirk: sv2_2's even branch additionally folds
				// pbuf[0] into acc (sv2_1 does not do this).
				acc = xorLane(pbuf, acc)
			}

		case 0x10:
			rcOff := prandIdx
			temp1 := pbufAdj
			temp2 := pbuf

			temp1, temp2 = aes2(temp1, temp2, ks.master, rcOff)
			temp1, temp2 = mix2(temp1, temp2)
			temp1, temp2 = aes2(temp1, temp2, ks.master, rcOff+4)
			temp1, temp2 = mix2(temp1, temp2)
			temp1, temp2 = aes2(temp1, temp2, ks.master, rcOff+8)
			temp1, temp2 = mix2(temp1, temp2)

			acc = xorLane(temp2, xorLane(temp1, acc))

			tempa1 := ks.master[prandIdx]
			tempa3 := xorLane(tempa1, mulhrsEpi16(acc, tempa1))

			tempa4 := ks.master[prandexIdx]
			ks.master[prandexIdx] = tempa3
			ks.master[prandIdx] = tempa4

		case 0x14:
			rounds := selector >> 61
			rcIdx := prandIdx
			aesOff := 0
			var onekey lane

			for {
				if selector&(uint64(0x10000000)<<rounds) != 0 {
					onekey = ks.master[rcIdx]
					rcIdx++
					var temp2 lane
					if rounds&1 != 0 {
						temp2 = pbuf
					} else {
						temp2 = pbufAdj
					}
					add1 := xorLane(onekey, temp2)
					acc = xorLane(clmulSelect(add1, add1, 0x10), acc)
				} else {
					onekey = ks.master[rcIdx]
					rcIdx++
					var temp2 lane
					if rounds&1 != 0 {
						temp2 = pbufAdj
					} else {
						temp2 = pbuf
					}
					onekey, temp2 = aes2(onekey, temp2, ks.master, prandIdx+aesOff)
					aesOff += 4
					onekey, temp2 = mix2(onekey, temp2)
					acc = xorLane(onekey, acc)
					acc = xorLane(temp2, acc)
				}
				if rounds == 0 {
					break
				}
				rounds--
			}

			tempa1 := ks.master[prandIdx]
			tempa3 := xorLane(tempa1, mulhrsEpi16(acc, tempa1))

			tempa4 := ks.master[prandexIdx]
			ks.master[prandexIdx] = tempa3
			ks.master[prandIdx] = tempa4

		case 0x18:
			rounds := selector >> 61
			rcIdx := prandIdx
			var onekey lane

			for {
				if selector&(uint64(0x10000000)<<rounds) != 0 {
					onekey = ks.master[rcIdx]
					rcIdx++
					var temp2 lane
					if rounds&1 != 0 {
						temp2 = pbuf
					} else {
						temp2 = pbufAdj
					}
					// legacy quirk: onekey is mutated in place before the
					// dividend is read, rather than kept separate as in
					// sv2_1's "if" branch.
					onekey = xorLane(onekey, temp2)
					dividend := int64(onekey.cvtsi64())
					divisor := int32(uint32(selector))
					modulo := laneFromI32(int32(dividend % int64(divisor)))
					acc = xorLane(modulo, acc)
				} else {
					onekey = ks.master[rcIdx]
					rcIdx++
					var temp2 lane
					if rounds&1 != 0 {
						temp2 = pbufAdj
					} else {
						temp2 = pbuf
					}
					add1 := xorLane(onekey, temp2)
					// legacy quirk: onekey is reassigned to the clmul
					// product itself, discarding the loaded round key.
					onekey = clmulSelect(add1, add1, 0x10)
					clprod2 := mulhrsEpi16(acc, onekey)
					acc = xorLane(clprod2, acc)
				}
				if rounds == 0 {
					break
				}
				rounds--
			}

			tempa3 := ks.master[prandexIdx]
			tempa4 := xorLane(tempa3, acc)
			// legacy quirk: store order is swapped relative to sv2_1 (which
			// stores tempa4 to prandex and onekey to prand).
			ks.master[prandexIdx] = onekey
			ks.master[prandIdx] = tempa4

		case 0x1c:
			temp2 := ks.master[prandexIdx]
			add1 := xorLane(pbuf, temp2)
			acc = xorLane(clmulSelect(add1, add1, 0x10), acc)

			tempa2 := xorLane(mulhrsEpi16(acc, temp2), temp2)

			tempa3 := ks.master[prandIdx]
			ks.master[prandIdx] = tempa2

			acc = xorLane(tempa3, acc)

			// legacy quirk: an extra fold of pbuf[∓1] into acc before the
			// final mulhrs stage (v1 and sv2_1 do not have this step).
			acc = xorLane(pbufAdj, acc)

			tempb2 := xorLane(mulhrsEpi16(acc, tempa3), tempa3)
			ks.master[prandexIdx] = tempb2
		}
	}

	return acc
}
