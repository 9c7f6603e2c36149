package session

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/linanwx/minichat/screen"
)

// The two editable areas, inside the boxes drawn by DrawLayout.
var (
	ResponseRegion = screen.Region{Row: 10, Col: 3, Width: 70, Height: 7}
	QuestionRegion = screen.Region{Row: 19, Col: 9, Width: 62, Height: 3}
)

const headerRow = 2

// Box borders sit one row above and below each region.
var (
	responseTop = ResponseRegion.Row - 1
	questionTop = QuestionRegion.Row - 1
	hintRow     = QuestionRegion.Bottom() + 1
)

var header = []string{
	"+===========================================================================+",
	"|              M   M  III  N   N  III   CCC  H   H   A   TTTTT              |",
	"|              MM MM   I   NN  N   I   C     H   H  A A    T                |",
	"|              M M M   I   N N N   I   C     HHHHH AAAAA   T                |",
	"|              M   M  III  N   N  III   CCC  H   H A   A   T                |",
	"+===========================================================================+",
}

const (
	responseBoxTop    = "+--------------------------------- REPONSE ----------------------------------+"
	responseBoxBottom = "+----------------------------------------------------------------------------+"
	questionBoxTop    = "      +============================QUESTION============================+"
	questionBoxBottom = "      +================================================================+"
	exitHint          = "Tappez 'sortir' ou 'exit' ou 'q' pour quitter Minichat."

	farewellMessage = "Merci d'avoir choisi MINICHAT! Au revoir!"
)

var (
	responseBoxLine = "|" + strings.Repeat(" ", len(responseBoxTop)-2) + "|"
	questionBoxLine = "      |" + strings.Repeat(" ", len(strings.TrimSpace(questionBoxTop))-2) + "|"
)

var bannerBorder = lipgloss.Border{
	Top:         "=",
	Bottom:      "=",
	Left:        "|",
	Right:       "|",
	TopLeft:     "+",
	TopRight:    "+",
	BottomLeft:  "+",
	BottomRight: "+",
}

var bannerStyle = lipgloss.NewStyle().
	Border(bannerBorder).
	Padding(0, 1)

// DrawLayout clears the screen and draws the static frame: the header, the
// response box, the question box and the exit hint. Every line is placed
// explicitly so the boxes frame ResponseRegion and QuestionRegion.
func DrawLayout(s screen.Surface) {
	s.ClearScreen()

	row := headerRow
	for _, line := range header {
		printAt(s, row, line)
		row++
	}

	printAt(s, responseTop, responseBoxTop)
	for i := 0; i < ResponseRegion.Height; i++ {
		printAt(s, ResponseRegion.Row+i, responseBoxLine)
	}
	printAt(s, ResponseRegion.Bottom(), responseBoxBottom)

	printAt(s, questionTop, questionBoxTop)
	for i := 0; i < QuestionRegion.Height; i++ {
		printAt(s, QuestionRegion.Row+i, questionBoxLine)
	}
	printAt(s, QuestionRegion.Bottom(), questionBoxBottom)
	printAt(s, hintRow, exitHint)
}

// Banner returns the goodbye box.
func Banner() []string {
	return strings.Split(bannerStyle.Render(farewellMessage), "\n")
}

// Farewell clears the screen and prints the goodbye banner, leaving the
// cursor on a fresh line below it.
func Farewell(s screen.Surface) {
	s.ClearScreen()
	row := headerRow
	for _, line := range Banner() {
		printAt(s, row, line)
		row++
	}
	s.MoveCursor(row+1, 1)
}

func printAt(s screen.Drawer, row int, text string) {
	s.MoveCursor(row, 1)
	s.Print(text)
}
