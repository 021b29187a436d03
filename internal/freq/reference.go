package freq

// Table is a reference letter distribution indexed A=0..Z=25.
type Table [AlphabetSize]float64

// EnglishIC is the expected index of coincidence of English text.
const EnglishIC = 0.0667

var english = Table{
	0.08167, 0.01492, 0.02782, 0.04253, 0.12702, 0.02228, 0.02015,
	0.06094, 0.06966, 0.00153, 0.00772, 0.04025, 0.02406, 0.06749,
	0.07507, 0.01929, 0.00095, 0.05987, 0.06327, 0.09056, 0.02758,
	0.00978, 0.02360, 0.00150, 0.01974, 0.00074,
}

// English returns the English letter frequency table.
func English() Table {
	return english
}

// Of returns the reference frequency of the letter at index idx (mod 26).
func (t Table) Of(idx int) float64 {
	idx %= AlphabetSize
	if idx < 0 {
		idx += AlphabetSize
	}
	return t[idx]
}
