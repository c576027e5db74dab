package patterns

// idCardWeights and idCardCheckCodes implement the GB 11643 check-digit
// scheme for 18-digit Chinese resident ID numbers.
var idCardWeights = [17]int{7, 9, 10, 5, 8, 4, 2, 1, 6, 3, 7, 9, 10, 5, 8, 4, 2}
var idCardCheckCodes = [11]byte{'1', '0', 'X', '9', '8', '7', '6', '5', '4', '3', '2'}

// isValidIDCard validates an 18-digit ID number's check digit.
func isValidIDCard(s string) bool {
	if len(s) != 18 {
		return false
	}
	sum := 0
	for i := 0; i < 17; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		sum += int(c-'0') * idCardWeights[i]
	}
	expect := idCardCheckCodes[sum%11]
	got := s[17]
	if got >= 'a' && got <= 'z' {
		got -= 'a' - 'A'
	}
	return got == expect
}
