package actors

import (
	"reflect"

	"github.com/asynkron/protoactor-go/actor"

	"github.com/mgmcelwee/evony/internal/shared/actor/messages"
	"github.com/mgmcelwee/evony/modules/kit/errx"
)

type Dispatcher struct {
	handlers map[reflect.Type]Handler
}

type Handler struct {
	fn      reflect.Value
	reqType reflect.Type
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[reflect.Type]Handler),
	}
	d.registerAll()
	return d
}

func (d *Dispatcher) registerAll() {
	register(d, WH.HandleTick)
	register(d, WH.HandleLaunchRaid)
	register(d, WH.HandleRecallRaid)
	register(d, WH.HandlePreviewRaid)
	register(d, WH.HandleRaidReport)
	register(d, WH.HandleListRaids)
	register(d, WH.HandleGetRaid)
}

func register[Req messages.WorldMessage](
	d *Dispatcher,
	fn func(ctx actor.Context, p *WorldActor, req Req),
) {
	reqType := reflect.TypeOf((*Req)(nil)).Elem()
	if reqType == nil {
		panic("dispatcher req type cannot be nil")
	}
	if _, dup := d.handlers[reqType]; dup {
		panic("dispatcher duplicate handler: " + reqType.String())
	}

	d.handlers[reqType] = Handler{
		fn:      reflect.ValueOf(fn),
		reqType: reqType,
	}
}

func (d *Dispatcher) Dispatch(ctx actor.Context, p *WorldActor, req messages.WorldMessage) {
	if req == nil {
		ctx.Respond(fail(errx.ErrReqParamERR.WithData("reason", "nil_request")))
		return
	}

	bodyType := reflect.TypeOf(req)
	handler, ok := d.handlers[bodyType]
	if !ok {
		ctx.Respond(fail(errx.ErrInternal.WithData("message_type", bodyType.String())))
		return
	}

	handler.fn.Call([]reflect.Value{
		reflect.ValueOf(ctx),
		reflect.ValueOf(p),
		reflect.ValueOf(req),
	})
}
