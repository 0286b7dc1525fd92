package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/luisdavi29052005/imagem-ai-avatar-studio/internal/chat"
)

const helpText = `Comandos:
  /login <email> <senha>     entrar
  /cadastro <email> <senha>  criar conta
  /google                    entrar com Google
  /logout                    sair da conta
  /conversas                 listar conversas
  /abrir <n|id>              abrir uma conversa
  /nova                      começar uma conversa nova
  /imagem <texto>            pedir uma imagem
  /anexar <arquivo>          anexar uma foto à próxima mensagem
  /painel                    abrir ou fechar o painel de upload
  /assinar <plano>           assinar um plano
  /status                    mostrar o estado atual
  /sair                      encerrar
Qualquer outro texto é enviado ao assistente.
`

var errDemoUnavailable = errors.New("indisponível no modo demonstração")

// Execute runs one line of input. It reports whether the user asked to quit.
func (a *App) Execute(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		a.send(chat.SendRequest{Prompt: line})
		return false
	}

	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch name {
	case "/sair":
		return true
	case "/ajuda":
		a.printf("%s", helpText)
	case "/login", "/cadastro":
		if len(args) != 2 {
			a.printf("Uso: %s <email> <senha>\n", name)
			return false
		}
		if name == "/login" {
			_ = a.auth.SignIn(ctx, args[0], args[1])
		} else {
			_ = a.auth.SignUp(ctx, args[0], args[1])
		}
	case "/google":
		_ = a.auth.SignInWithGoogle(ctx)
	case "/logout":
		_ = a.auth.SignOut(ctx)
	case "/conversas":
		a.listConversations(ctx)
	case "/abrir":
		if len(args) != 1 {
			a.printf("Uso: /abrir <n|id>\n")
			return false
		}
		a.openConversation(ctx, args[0])
	case "/nova":
		if a.sync != nil {
			if err := a.sync.Flush(ctx); err != nil {
				a.logger.Warn("save before new conversation failed", "error", err)
			}
			a.sync.NewConversation()
		}
		a.chat.Reset()
		a.printf("Nova conversa iniciada.\n")
	case "/imagem":
		a.send(chat.SendRequest{Prompt: rest, GenerateImage: true})
	case "/anexar":
		a.attach(rest)
	case "/painel":
		a.chat.ToggleUploadPanel()
		if a.chat.Snapshot().UploadPanelOpen {
			a.printf("Painel de upload aberto. Use /anexar <arquivo>.\n")
		} else {
			a.printf("Painel de upload fechado.\n")
		}
	case "/assinar":
		if a.checkout == nil {
			a.printf("Assinatura %s.\n", errDemoUnavailable)
			return false
		}
		if len(args) != 1 {
			a.printf("Uso: /assinar <plano>\n")
			return false
		}
		_ = a.checkout.StartCheckout(ctx, args[0])
	case "/status":
		a.status()
	default:
		a.printf("Comando desconhecido %s. Digite /ajuda.\n", name)
	}
	return false
}

func (a *App) send(req chat.SendRequest) {
	err := a.chat.Send(req)
	switch {
	case errors.Is(err, chat.ErrBusy):
		a.printf("Aguarde a resposta anterior.\n")
	case errors.Is(err, chat.ErrEmptyInput):
	case err != nil:
		a.printf("Erro: %v\n", err)
	}
}

func (a *App) attach(path string) {
	if path == "" {
		a.printf("Uso: /anexar <arquivo>\n")
		return
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		a.printf("Arquivo não encontrado: %s\n", path)
		return
	}
	a.chat.AttachUpload(chat.Attachment{Name: filepath.Base(path), Size: info.Size()})
	a.printf("Imagem anexada: %s\n", filepath.Base(path))
}

func (a *App) listConversations(ctx context.Context) {
	if a.sync == nil {
		a.printf("Histórico de conversas %s.\n", errDemoUnavailable)
		return
	}
	if !a.auth.IsLoggedIn() {
		a.printf("Entre na sua conta para ver suas conversas.\n")
		return
	}
	if err := a.sync.FetchConversations(ctx); err != nil {
		return
	}
	list := a.sync.Conversations()
	if len(list) == 0 {
		a.printf("Nenhuma conversa salva.\n")
		return
	}
	active := a.sync.ActiveConversationID()
	for i, c := range list {
		marker := " "
		if c.ID == active {
			marker = "*"
		}
		a.printf("%s %d. %s (%s)\n", marker, i+1, c.Title, c.LastMessageAt.Local().Format("02/01/2006 15:04"))
	}
}

func (a *App) openConversation(ctx context.Context, ref string) {
	if a.sync == nil {
		a.printf("Histórico de conversas %s.\n", errDemoUnavailable)
		return
	}
	id := ref
	if n, err := strconv.Atoi(ref); err == nil {
		list := a.sync.Conversations()
		if n < 1 || n > len(list) {
			a.printf("Conversa %d não existe. Use /conversas.\n", n)
			return
		}
		id = list[n-1].ID
	}

	if a.chat.Snapshot().State != chat.StateIdle {
		a.printf("Aguarde a resposta anterior.\n")
		return
	}
	if err := a.sync.Flush(ctx); err != nil {
		a.logger.Warn("save before switching conversation failed", "error", err)
	}
	messages, err := a.sync.LoadMessages(ctx, id)
	if err != nil {
		return
	}

	// Printed here in full, so render has nothing left to show.
	a.mu.Lock()
	for _, m := range messages {
		a.printMessage(m)
	}
	a.shown = len(messages)
	a.mu.Unlock()

	if err := a.chat.ReplaceTranscript(messages); err != nil {
		a.printf("Aguarde a resposta anterior.\n")
	}
}

func (a *App) status() {
	snap := a.chat.Snapshot()
	if session := a.auth.CurrentSession(); session != nil {
		a.printf("Conta: %s\n", session.User.Email)
	} else {
		a.printf("Conta: visitante\n")
	}
	if a.demo != nil {
		p := a.demo.Profile()
		a.printf("Modo demonstração, imagens restantes: %d\n", p.ImageGenerationsLeft)
	}
	a.printf("Estado: %s, humor: %s\n", snap.State, snap.Mood)
	a.printf("Imagens geradas: %d\n", snap.ImageGenerationCount)
	if snap.Cooldown > 0 {
		a.printf("GPT disponível em %ds\n", snap.Cooldown)
	}
	if snap.Upload != nil {
		a.printf("Anexo: %s\n", snap.Upload.Name)
	}
	if a.sync != nil && a.sync.ActiveConversationID() != "" {
		a.printf("Conversa ativa: %s\n", a.sync.ActiveConversationID())
	}
	if a.sync != nil && a.sync.HasUnsavedChanges() {
		a.printf("Alterações aguardando salvamento automático\n")
	}
}
