package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-crm/internal/usecase"
)

const wsWriteTimeout = 5 * time.Second

// Eventos trocados no /ws/duplicates.
const (
	wsEventInput   = "input"
	wsEventVerdict = "verdict"
	wsEventError   = "error"
)

type wsInbound struct {
	Event string                      `json:"event"`
	Data  usecase.DuplicateCheckInput `json:"data"`
}

type wsOutbound struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

type DuplicateHandler struct {
	Checker  usecase.DuplicateCheckerInterface
	Debounce time.Duration
	Logger   *zap.Logger
}

func NewDuplicateHandler(checker usecase.DuplicateCheckerInterface, debounce time.Duration, logger *zap.Logger) *DuplicateHandler {
	return &DuplicateHandler{Checker: checker, Debounce: debounce, Logger: loggerOrNop(logger)}
}

// Check (POST /students/duplicates/check) faz uma verificação avulsa, sem debounce.
func (h *DuplicateHandler) Check(w http.ResponseWriter, r *http.Request) {
	var input usecase.DuplicateCheckInput
	if !decodeJSON(w, r, &input) {
		return
	}
	writeJSON(w, http.StatusOK, h.Checker.Check(r.Context(), input))
}

// Watch (GET /ws/duplicates) acompanha o formulário enquanto o usuário digita.
// O cliente manda {"event":"input","data":{...}} com o estado atual dos campos;
// o servidor responde {"event":"verdict","data":...} com "verificando" na hora
// e com o veredito depois do debounce.
func (h *DuplicateHandler) Watch(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("falha no upgrade do websocket", zap.Error(err))
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(msg wsOutbound) {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(msg); err != nil {
			h.Logger.Debug("falha ao enviar mensagem no websocket", zap.String("event", msg.Event), zap.Error(err))
		}
	}
	publish := func(v usecase.DuplicateVerdict) {
		send(wsOutbound{Event: wsEventVerdict, Data: v})
	}

	watcher := usecase.NewDuplicateWatcher(r.Context(), h.Checker, h.Debounce, publish)
	defer watcher.Close()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Logger.Debug("websocket de duplicidade encerrado", zap.Error(err))
			}
			return
		}

		var msg wsInbound
		if err := json.Unmarshal(raw, &msg); err != nil {
			send(wsOutbound{Event: wsEventError, Data: ErrorResponse{Code: usecase.CodeValidation, Message: "JSON inválido: " + err.Error()}})
			continue
		}
		if msg.Event != wsEventInput {
			send(wsOutbound{Event: wsEventError, Data: ErrorResponse{Code: usecase.CodeValidation, Message: "evento desconhecido: " + msg.Event}})
			continue
		}
		watcher.Update(msg.Data)
	}
}
