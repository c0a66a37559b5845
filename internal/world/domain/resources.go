package domain

// ResourceKind 资源种类。顺序固定为 food, wood, stone, iron，用于所有需要确定性排序的地方。
type ResourceKind int

const (
	Food ResourceKind = iota
	Wood
	Stone
	Iron
)

// ResourceKinds 按固定顺序列出全部资源。
var ResourceKinds = [...]ResourceKind{Food, Wood, Stone, Iron}

func (k ResourceKind) String() string {
	switch k {
	case Food:
		return "food"
	case Wood:
		return "wood"
	case Stone:
		return "stone"
	case Iron:
		return "iron"
	default:
		return "unknown"
	}
}

// Resources 是四种资源的整数向量，库存、上限、保护量、产出率、掠夺量都用它表示。
type Resources struct {
	Food  int64 `json:"food" bson:"food"`
	Wood  int64 `json:"wood" bson:"wood"`
	Stone int64 `json:"stone" bson:"stone"`
	Iron  int64 `json:"iron" bson:"iron"`
}

func (r Resources) Get(k ResourceKind) int64 {
	switch k {
	case Food:
		return r.Food
	case Wood:
		return r.Wood
	case Stone:
		return r.Stone
	case Iron:
		return r.Iron
	default:
		return 0
	}
}

func (r *Resources) Set(k ResourceKind, v int64) {
	switch k {
	case Food:
		r.Food = v
	case Wood:
		r.Wood = v
	case Stone:
		r.Stone = v
	case Iron:
		r.Iron = v
	}
}

func (r Resources) Total() int64 {
	return r.Food + r.Wood + r.Stone + r.Iron
}

func (r Resources) Add(o Resources) Resources {
	return Resources{Food: r.Food + o.Food, Wood: r.Wood + o.Wood, Stone: r.Stone + o.Stone, Iron: r.Iron + o.Iron}
}

// Scale 返回 r*n，用于 rate×minutes。
func (r Resources) Scale(n int64) Resources {
	return Resources{Food: r.Food * n, Wood: r.Wood * n, Stone: r.Stone * n, Iron: r.Iron * n}
}

// Min 逐项取较小值。
func (r Resources) Min(o Resources) Resources {
	return Resources{Food: min(r.Food, o.Food), Wood: min(r.Wood, o.Wood), Stone: min(r.Stone, o.Stone), Iron: min(r.Iron, o.Iron)}
}

// ClampNonNegative 把负数归零。
func (r Resources) ClampNonNegative() Resources {
	return Resources{Food: max(0, r.Food), Wood: max(0, r.Wood), Stone: max(0, r.Stone), Iron: max(0, r.Iron)}
}

func (r Resources) IsZero() bool {
	return r == Resources{}
}
