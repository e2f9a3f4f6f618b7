package catalog

// Default returns the built-in questionnaire used when no document can be
// loaded at startup.
func Default() *Catalog {
	return New([]Question{
		{
			ID:       "regime",
			Text:     "Qual o regime tributário da sua empresa?",
			Category: "Enquadramento",
			Options: []Option{
				{Label: "Simples Nacional", Weight: 0},
				{Label: "Lucro Presumido", Weight: 5},
				{Label: "Lucro Real", Weight: 5},
				{Label: "Não sei informar", Weight: 15},
			},
		},
		{
			ID:       "faturamento",
			Text:     "O faturamento ultrapassou o limite do seu regime nos últimos 12 meses?",
			Category: "Enquadramento",
			Options: []Option{
				{Label: "Não", Weight: 0},
				{Label: "Não sei", Weight: 12},
				{Label: "Sim", Weight: 25},
			},
		},
		{
			ID:       "simples_anexo",
			Text:     "Você revisa o Anexo e o Fator R aplicados no Simples Nacional?",
			Category: "Enquadramento",
			Options: []Option{
				{Label: "Sim, mensalmente", Weight: 0},
				{Label: "Ocasionalmente", Weight: 8},
				{Label: "Nunca", Weight: 15},
			},
			ShowIf: []Condition{{DependsOn: "regime", Value: "Simples Nacional"}},
		},
		{
			ID:       "notas",
			Text:     "Todas as vendas e serviços são acompanhados de nota fiscal?",
			Category: "Documentação",
			Options: []Option{
				{Label: "Sempre", Weight: 0},
				{Label: "Na maioria das vezes", Weight: 10},
				{Label: "Raramente", Weight: 22},
			},
		},
		{
			ID:       "declaracoes",
			Text:     "As declarações acessórias (DCTFWeb, EFD, DEFIS) são entregues no prazo?",
			Category: "Obrigações",
			Options: []Option{
				{Label: "Sempre no prazo", Weight: 0},
				{Label: "Com atrasos eventuais", Weight: 10},
				{Label: "Não sei", Weight: 12},
				{Label: "Frequentemente atrasadas", Weight: 20},
			},
		},
		{
			ID:       "contador",
			Text:     "Sua empresa possui contador ou escritório contábil?",
			Category: "Gestão",
			Options: []Option{
				{Label: "Sim", Weight: 0},
				{Label: "Não", Weight: 18},
			},
		},
		{
			ID:       "contador_frequencia",
			Text:     "Com que frequência você conversa com a contabilidade?",
			Category: "Gestão",
			Options: []Option{
				{Label: "Mensalmente", Weight: 0},
				{Label: "Trimestralmente", Weight: 4},
				{Label: "Só quando há problema", Weight: 10},
			},
			ShowIf: []Condition{{DependsOn: "contador", Value: "Sim"}},
		},
		{
			ID:       "pro_labore",
			Text:     "Os sócios retiram pró-labore formalizado?",
			Category: "Gestão",
			Options: []Option{
				{Label: "Sim", Weight: 0},
				{Label: "Não, só distribuição de lucros", Weight: 12},
				{Label: "Retiradas sem controle", Weight: 20},
			},
		},
		{
			ID:       "contas",
			Text:     "As contas bancárias da empresa e dos sócios são separadas?",
			Category: "Gestão",
			Options: []Option{
				{Label: "Sim", Weight: 0},
				{Label: "Parcialmente", Weight: 10},
				{Label: "Não", Weight: 20},
			},
		},
		{
			ID:       "pendencias",
			Text:     "Existem débitos fiscais em aberto?",
			Category: "Obrigações",
			Options: []Option{
				{Label: "Não", Weight: 0},
				{Label: "Sim, parcelados e em dia", Weight: 6},
				{Label: "Não sei", Weight: 12},
				{Label: "Sim, sem parcelamento", Weight: 24},
			},
		},
		{
			ID:       "notificacoes",
			Text:     "Você já recebeu notificação da Receita Federal ou da SEFAZ?",
			Category: "Fiscalização",
			Options: []Option{
				{Label: "Nunca", Weight: 0},
				{Label: "Sim, já resolvida", Weight: 8},
				{Label: "Sim, ainda em aberto", Weight: 25},
			},
			ShowIf: []Condition{
				{DependsOn: "notas", Value: "Raramente"},
				{DependsOn: "contas", Value: "Não"},
			},
			ShowIfMode: ModeAll,
		},
		{
			ID:       "funcionarios",
			Text:     "Sua empresa possui funcionários?",
			Category: "Trabalhista",
			Options: []Option{
				{Label: "Não possui funcionários", Weight: 0},
				{Label: "Sim, todos registrados", Weight: 0},
				{Label: "Alguns sem registro", Weight: 20},
			},
		},
		{
			ID:       "esocial",
			Text:     "O eSocial e o FGTS Digital estão em dia?",
			Category: "Trabalhista",
			Options: []Option{
				{Label: "Sim", Weight: 0},
				{Label: "Não sei", Weight: 10},
				{Label: "Com pendências", Weight: 12},
			},
			ShowIf: []Condition{
				{DependsOn: "funcionarios", Value: "Sim, todos registrados"},
				{DependsOn: "funcionarios", Value: "Alguns sem registro"},
			},
			ShowIfMode: ModeAny,
		},
	})
}
