package knowledge

import (
	"fmt"
	"strings"
)

const (
	TelefoneContato = "(11) 5677-4699"
	EmailContato    = "packaging.br@storopack.com"
)

// palavrasSelagem routes sealing/thermal questions to the sealing entry.
var palavrasSelagem = []string{
	"selagem", "selar", "selo", "vedacao", "vedar", "fio", "resistencia",
	"calibrar", "calibracao", "calibrado", "temperatura", "aquecimento",
}

var saudacoes = []string{"ola", "oi", "bom dia", "boa tarde", "boa noite", "hello", "hi"}

// respostasOffline is the static remediation table served when the AI path is
// unavailable. Markers are resolved by the post-processor.
var respostasOffline = map[string]string{
	"e1":  "⚠️ Erro E1 - Sensor de Temperatura\n\nPossíveis causas:\n• Sensor NTC desconectado ou com mau contato\n• Fio do sensor rompido\n• Sensor com defeito\n\nSolução:\n1. Desligue a máquina\n2. Verifique a conexão do sensor NTC\n3. Limpe os contatos\n4. Religue e teste\n\n[SIM_VIDEO_E1]",
	"e2":  "⚠️ Erro E2 - Resistência de Selagem\n\nPossíveis causas:\n• Resistência NTC com defeito\n• Fios de selagem danificados ou rompidos\n• Curto-circuito nas conexões\n\nSolução:\n1. Verifique a resistência NTC e fios de selagem\n2. Cheque todas as conexões\n3. Substitua se danificada\n\n[SIM_VIDEO_E2]",
	"e3":  "⚠️ Erro E3 - Sensor de Filme\n\nPossíveis causas:\n• Filme acabou ou está preso\n• Sensor de filme sujo ou desalinhado\n• Filme mal posicionado no caminho\n\nSolução:\n1. Verifique se o filme acabou\n2. Libere filme preso\n3. Limpe o sensor com pano seco\n4. Reposicione o filme corretamente\n\n[SIM_VIDEO_E3]",
	"e4":  "⚠️ Erro E4 - Posicionamento Inicial\n\nPossíveis causas:\n• Sensor de posição com problema\n• Mecanismo travado\n• Motor com defeito\n\nSolução:\n1. Desligue e religue a máquina\n2. Verifique se há obstrução mecânica\n3. Cheque o sensor de posição\n\n[SIM_VIDEO_E4]",
	"e5":  "⚠️ Erro E5 - Motor de Passo\n\nPossíveis causas:\n• Motor de passo com falha\n• Conexão do motor solta\n• Placa controladora com problema\n\nSolução:\n1. Desligue a máquina\n2. Verifique conexões do motor\n3. Reinicie o sistema\n\n[SIM_VIDEO_E5]",
	"e6":  "⚠️ Erro E6 - Termopar\n\nPossíveis causas:\n• Termopar desconectado\n• Termopar com defeito\n• Problema na leitura de temperatura\n\nSolução:\n1. Verifique conexão do termopar\n2. Teste continuidade do sensor\n3. Substitua se necessário\n\n[SIM_VIDEO_E6]",
	"e7":  "⚠️ Erro E7 - Termopar\n\nPossíveis causas:\n• Segundo termopar com falha\n• Conexão intermitente\n• Oxidação nos contatos\n\nSolução:\n1. Cheque conexão do termopar\n2. Limpe contatos oxidados\n3. Substitua se com defeito\n\n[SIM_VIDEO_E7]",
	"e8":  "⚠️ Erro E8 - Termopar\n\nPossíveis causas:\n• Termopar fora da faixa de operação\n• Problema no circuito de medição\n\nSolução:\n1. Verifique todos os termopares\n2. Cheque temperatura ambiente\n3. Reinicie o equipamento\n\n[SIM_VIDEO_E8]",
	"e9":  "⚠️ Erro E9 - Calibração Fora do Limite\n\nPossíveis causas:\n• Fios de selagem desgastados\n• Resistência fora da faixa (ideal: 2800-5200)\n• Conexões soltas no sistema de selagem\n\nSolução:\n1. Rode a calibração novamente\n2. Verifique estabilidade das conexões\n3. Valor alto indica desgaste dos fios\n4. Substitua os fios se necessário\n\n[SIM_VIDEO_E9]",
	"e10": "⚠️ Erro E10 - Parâmetro Extremo\n\nPossíveis causas:\n• Configuração fora dos limites seguros\n• Parâmetro corrompido na memória\n\nSolução:\n1. Restaure configurações de fábrica\n2. Reconfigure os parâmetros\n3. Rode calibração\n\n[SIM_VIDEO_E10]",
	"e11": "⚠️ Erro E11 - Instabilidade na Selagem\n\nPossíveis causas:\n• Flutuação de temperatura durante selagem\n• Fios de selagem irregulares\n• Problema na fonte de alimentação\n\nSolução:\n1. Verifique estabilidade da rede elétrica\n2. Inspecione fios de selagem\n3. Recalibre o sistema\n\n[SIM_VIDEO_E11]",

	"calibracao": "Como Calibrar:\n\n1. A calibração ajusta o sistema de selagem considerando a resistência dos fios\n2. Durante a calibração, os botões não têm efeito\n3. Apenas parar ou desligar interrompe o processo\n4. Após calibrar, valide visualmente a selagem\n5. Ajuste temperatura, ar e velocidade se necessário",
	"selagem":    "Problemas de Selagem:\n\n1. Verifique temperatura (125-135°C para maioria dos materiais)\n2. Confira pressão do ar e velocidade\n3. Inspecione fios de selagem (desgaste/oxidação)\n4. Se selagem irregular, recalibre o sistema",
}

// respostaOffline answers from the static table: numbered error codes first,
// then calibration, then sealing keywords, then greetings, else the generic
// "system offline" message carrying the equipment display name. Pure function
// of the lower-cased question and the resolved equipment name.
func respostaOffline(pergunta, nomeEquipamento string) string {
	lower := strings.ToLower(pergunta)

	for i := 1; i <= 11; i++ {
		codigo := fmt.Sprintf("e%d", i)
		if strings.Contains(lower, codigo) || strings.Contains(lower, fmt.Sprintf("erro %d", i)) {
			return respostasOffline[codigo]
		}
	}

	if strings.Contains(lower, "calibra") {
		return respostasOffline["calibracao"]
	}

	for _, palavra := range palavrasSelagem {
		if strings.Contains(lower, palavra) {
			return respostasOffline["selagem"]
		}
	}

	for _, s := range saudacoes {
		if strings.Contains(lower, s) {
			return fmt.Sprintf("Olá! Sou o assistente técnico Storopack para %s.\n\nDescreva o problema ou erro que está aparecendo na máquina.", nomeEquipamento)
		}
	}

	return fmt.Sprintf("Sistema offline para %s.\n\n"+
		"Para suporte completo com acesso aos manuais, verifique:\n"+
		"- Conexão com a internet\n"+
		"- Configuração da API OpenAI\n\n"+
		"Ou ligue: %s", nomeEquipamento, TelefoneContato)
}
