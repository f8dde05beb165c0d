package video

import "strings"

// ErroVisual is one visually identifiable failure mode of an equipment family.
type ErroVisual struct {
	Nome    string
	Sinais  []string
	Solucao string
	Video   string
}

// errosVisuais is the static visual-error knowledge per equipment family.
// Keys are the base family (module key portion before the first underscore).
var errosVisuais = map[string]map[string]ErroVisual{
	"airplus": {
		"E1": {
			Nome:    "Erro de Sensor de Filme",
			Sinais:  []string{"LED vermelho aceso", "display mostrando E1", "filme desalinhado"},
			Solucao: "1. Desligue a máquina\n2. Verifique o alinhamento do filme\n3. Limpe o sensor com pano seco\n4. Religue e teste",
			Video:   "https://www.youtube.com/watch?v=IbG1o-UbrtI",
		},
		"E2": {
			Nome:    "Falha na Selagem",
			Sinais:  []string{"almofadas não selam corretamente", "vazamento de ar", "selagem fraca"},
			Solucao: "1. Verifique a temperatura de selagem\n2. Limpe a barra de selagem\n3. Ajuste a pressão\n4. Teste com novo filme",
			Video:   "https://www.youtube.com/watch?v=IbG1o-UbrtI",
		},
		"E3": {
			Nome:    "Problema de Pressão de Ar",
			Sinais:  []string{"almofadas murchas", "som de vazamento", "mangueiras soltas", "display E3"},
			Solucao: "1. Verifique conexões de ar\n2. Cheque mangueiras\n3. Limpe filtro de ar\n4. Ajuste pressão no regulador",
			Video:   "https://www.youtube.com/watch?v=IbG1o-UbrtI",
		},
		"E4": {
			Nome:    "Erro no Sensor de Corte",
			Sinais:  []string{"filme não corta", "corte irregular", "lâmina travada"},
			Solucao: "1. Desligue a máquina\n2. Verifique a lâmina de corte\n3. Limpe resíduos\n4. Substitua lâmina se necessário",
			Video:   "https://www.youtube.com/watch?v=IbG1o-UbrtI",
		},
		"E5": {
			Nome:    "Superaquecimento",
			Sinais:  []string{"máquina muito quente", "cheiro de queimado", "desligamento automático"},
			Solucao: "1. Desligue imediatamente\n2. Aguarde 30 minutos\n3. Verifique ventilação\n4. Limpe filtros de ar",
			Video:   "https://www.youtube.com/watch?v=IbG1o-UbrtI",
		},
		"travamento": {
			Nome:    "Travamento de Filme",
			Sinais:  []string{"filme preso", "filme embolado", "máquina parada"},
			Solucao: "1. Desligue a máquina\n2. Abra a tampa\n3. Remova o filme preso\n4. Realinhe o filme\n5. Feche e teste",
			Video:   "https://www.youtube.com/watch?v=IbG1o-UbrtI",
		},
	},
	"paperplus": {
		"papel_preso": {
			Nome:    "Papel Preso",
			Sinais:  []string{"papel amassado", "papel não sai", "travamento"},
			Solucao: "1. Desligue a máquina\n2. Abra a tampa traseira\n3. Remova o papel preso\n4. Verifique rolos\n5. Recarregue o papel",
			Video:   "https://www.youtube.com/watch?v=a8iCa46yRu4",
		},
		"corte_irregular": {
			Nome:    "Corte Irregular",
			Sinais:  []string{"bordas irregulares", "corte torto", "lâmina gasta"},
			Solucao: "1. Verifique a lâmina\n2. Limpe resíduos\n3. Ajuste a pressão\n4. Substitua lâmina se necessário",
			Video:   "https://www.youtube.com/watch?v=a8iCa46yRu4",
		},
	},
	"foamplus": {
		"espuma_nao_expande": {
			Nome:    "Espuma Não Expande",
			Sinais:  []string{"espuma líquida", "não forma volume", "mistura incorreta"},
			Solucao: "1. Verifique os químicos\n2. Cheque a proporção\n3. Limpe os bicos\n4. Ajuste a temperatura",
			Video:   "https://www.youtube.com/watch?v=bhVK8KCJihs",
		},
		"vazamento": {
			Nome:    "Vazamento de Químico",
			Sinais:  []string{"líquido escorrendo", "poça no chão", "conexões molhadas"},
			Solucao: "1. Desligue imediatamente\n2. Ventile a área\n3. Limpe o vazamento\n4. Verifique conexões\n5. Chame suporte técnico",
			Video:   "https://www.youtube.com/watch?v=bhVK8KCJihs",
		},
	},
	"airmove": {
		"E1": {
			Nome:    "Erro de Sensor",
			Sinais:  []string{"LED vermelho", "display E1"},
			Solucao: "1. Desligue a máquina\n2. Verifique sensores\n3. Limpe com pano seco\n4. Religue",
			Video:   "https://www.youtube.com/watch?v=IbG1o-UbrtI",
		},
	},
}

// catalogoPara returns the visual-error entries for the module's base family.
// The frontend sends compound keys ("airplus_void"); only the family matters.
func catalogoPara(modulo string) map[string]ErroVisual {
	base, _, _ := strings.Cut(strings.ToLower(modulo), "_")
	return errosVisuais[base]
}
