package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/radarfiscal/radar/internal/catalog"
	"github.com/radarfiscal/radar/internal/payment"
	"github.com/radarfiscal/radar/internal/scoring"
)

// Terminal is a line-oriented UI over a reader and writer.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer

	title  *color.Color
	muted  *color.Color
	danger *color.Color
	warn   *color.Color
	ok     *color.Color
}

// NewTerminal enables colors only when out is an interactive terminal.
func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	t := &Terminal{
		in:     bufio.NewReader(in),
		out:    out,
		title:  color.New(color.FgCyan, color.Bold),
		muted:  color.New(color.Faint),
		danger: color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		ok:     color.New(color.FgGreen, color.Bold),
	}
	if f, isFile := out.(*os.File); !isFile || !isatty.IsTerminal(f.Fd()) {
		for _, c := range []*color.Color{t.title, t.muted, t.danger, t.warn, t.ok} {
			c.DisableColor()
		}
	}
	return t
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (t *Terminal) Consent() (bool, error) {
	t.title.Fprintln(t.out, "Termos e Privacidade")
	fmt.Fprintln(t.out, "Radar Fiscal é uma ferramenta informativa baseada em autoavaliação.")
	fmt.Fprint(t.out, "Aceito os Termos de Uso e Política de Privacidade [s/N]: ")
	line, err := t.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "s", "sim", "y", "yes":
		return true, nil
	}
	return false, nil
}

func (t *Terminal) Ask(q catalog.Question, step, total int) (catalog.Option, bool, error) {
	for {
		fmt.Fprintln(t.out)
		t.muted.Fprintf(t.out, "Pergunta %d de %d · %s\n", step, total, q.Category)
		t.title.Fprintln(t.out, q.Text)
		for i, o := range q.Options {
			fmt.Fprintf(t.out, "  %d) %s\n", i+1, o.Label)
		}
		prompt := "Escolha uma opção"
		if step > 1 {
			prompt += " (v para voltar)"
		}
		fmt.Fprint(t.out, prompt+": ")

		line, err := t.readLine()
		if err != nil {
			return catalog.Option{}, false, err
		}
		if step > 1 && strings.EqualFold(line, "v") {
			return catalog.Option{}, true, nil
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(q.Options) {
			t.warn.Fprintln(t.out, "Opção inválida.")
			continue
		}
		return q.Options[n-1], false, nil
	}
}

func (t *Terminal) Preview(r Result) {
	fmt.Fprintln(t.out)
	t.title.Fprintln(t.out, "Prévia do diagnóstico")
	fmt.Fprint(t.out, "Nível de risco: ")
	t.classification(r.Classification).Fprintln(t.out, r.Classification)
	if !r.Paid() {
		t.muted.Fprintln(t.out, "Desbloqueie o relatório completo: score numérico (0 a 100) e fatores de risco.")
	}
}

func (t *Terminal) Email() (string, error) {
	fmt.Fprint(t.out, "E-mail para receber o relatório: ")
	return t.readLine()
}

func (t *Terminal) PaymentCode(code payment.Code) {
	fmt.Fprintln(t.out)
	t.title.Fprintln(t.out, "Pague com PIX (copia e cola):")
	fmt.Fprintln(t.out, code.QRCode)
	if code.ExpiresAt != nil {
		t.muted.Fprintf(t.out, "Válido até %s\n", code.ExpiresAt.Local().Format("15:04"))
	}
	t.muted.Fprintln(t.out, "Aguardando confirmação do pagamento...")
}

func (t *Terminal) Recheck() (bool, error) {
	t.warn.Fprintln(t.out, "Ainda não identificamos o pagamento.")
	fmt.Fprint(t.out, "Verificar pagamento novamente? [S/n]: ")
	line, err := t.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(line) {
	case "n", "nao", "não", "no":
		return false, nil
	}
	return true, nil
}

func (t *Terminal) Report(r Result) {
	fmt.Fprintln(t.out)
	t.title.Fprintln(t.out, "Relatório completo")
	if r.ScoreFinal != nil {
		fmt.Fprintf(t.out, "Score: %d/100 · ", *r.ScoreFinal)
	}
	t.classification(r.Classification).Fprintln(t.out, r.Classification)

	if len(r.Factors) == 0 {
		t.ok.Fprintln(t.out, "Nenhum fator de risco relevante identificado.")
		return
	}
	fmt.Fprintln(t.out, "Fatores de risco:")
	for _, f := range r.Factors {
		c := t.warn
		if f.Impact == scoring.Critical {
			c = t.danger
		}
		c.Fprintf(t.out, "  [%s] ", f.Impact)
		fmt.Fprintf(t.out, "%s → %s\n", f.QuestionText, f.AnswerLabel)
	}
}

func (t *Terminal) Notice(msg string) {
	t.warn.Fprintln(t.out, msg)
}

func (t *Terminal) classification(c scoring.Classification) *color.Color {
	switch c {
	case scoring.High:
		return t.danger
	case scoring.Medium:
		return t.warn
	default:
		return t.ok
	}
}
