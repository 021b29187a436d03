// Package testutil holds fixtures shared by package tests.
package testutil

// EnglishSample is plain English prose long enough for column statistics.
const EnglishSample = `It was the best of times, it was the worst of times, it was the age of
wisdom, it was the age of foolishness, it was the epoch of belief, it was the
epoch of incredulity, it was the season of Light, it was the season of
Darkness, it was the spring of hope, it was the winter of despair, we had
everything before us, we had nothing before us, we were all going direct to
Heaven, we were all going direct the other way. In short, the period was so
far like the present period, that some of its noisiest authorities insisted on
its being received, for good or for evil, in the superlative degree of
comparison only. There were a king with a large jaw and a queen with a plain
face, on the throne of England; there were a king with a large jaw and a queen
with a fair face, on the throne of France. In both countries it was clearer
than crystal to the lords of the State preserves of loaves and fishes, that
things in general were settled for ever. It is a truth universally
acknowledged, that a single man in possession of a good fortune, must be in
want of a wife. However little known the feelings or views of such a man may
be on his first entering a neighbourhood, this truth is so well fixed in the
minds of the surrounding families, that he is considered the rightful property
of some one or other of their daughters. My dear Mr. Bennet, said his lady to
him one day, have you heard that Netherfield Park is let at last? Mr. Bennet
replied that he had not. But it is, returned she; for Mrs. Long has just been
here, and she told me all about it. Mr. Bennet made no answer. Do you not want
to know who has taken it? cried his wife impatiently. You want to tell me, and
I have no objection to hearing it. This was invitation enough. Why, my dear,
you must know, Mrs. Long says that Netherfield is taken by a young man of large
fortune from the north of England; that he came down on Monday in a chaise and
four to see the place, and was so much delighted with it that he agreed with
Mr. Morris immediately; that he is to take possession before Michaelmas, and
some of his servants are to be in the house by the end of next week.`

// LettersOnly strips everything but ASCII letters and upper-cases the rest.
func LettersOnly(text string) string {
	out := make([]byte, 0, len(text))
	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch >= 'a' && ch <= 'z':
			out = append(out, ch-'a'+'A')
		case ch >= 'A' && ch <= 'Z':
			out = append(out, ch)
		}
	}
	return string(out)
}
