package interfaces

import (
	"github.com/gin-gonic/gin"

	transporthttp "github.com/mgmcelwee/evony/internal/shared/transport/http"
	"github.com/mgmcelwee/evony/internal/world/interfaces/handler"
	"github.com/mgmcelwee/evony/modules/kit/logx"
)

type Module struct {
	httpHandler *handler.WorldHandler
}

func New(world handler.World, gate handler.TickGate, log logx.Logger) *Module {
	return &Module{httpHandler: handler.NewWorldHandler(world, gate, log)}
}

func (m *Module) HttpRegister(g *gin.RouterGroup) {
	m.httpHandler.RegisterRoutes(g)
}

var _ transporthttp.Registrar = (*Module)(nil)
