package router

import (
	"cmp"
	"slices"

	"github.com/gin-gonic/gin"
)

type APIModule interface{ MountAPI(*gin.RouterGroup) }
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// 实现 Priority 的模块按数值从小到大挂载，默认 100
type prioritizer interface{ Priority() int }

const defaultPriority = 100

type entry[M any] struct {
	mod M
	pri int
}

// Registry 收集 handler 模块，api 与 admin 两个引擎各取所需
type Registry struct {
	api   []entry[APIModule]
	admin []entry[AdminModule]
}

func NewRegistry(mods ...any) *Registry {
	r := &Registry{}
	r.Register(mods...)
	return r
}

// Register 一个模块可以同时进入两个列表；两者都不实现的会被忽略
func (r *Registry) Register(mods ...any) {
	for _, mod := range mods {
		pri := defaultPriority
		if p, ok := mod.(prioritizer); ok {
			pri = p.Priority()
		}
		if m, ok := mod.(APIModule); ok {
			r.api = insert(r.api, entry[APIModule]{m, pri})
		}
		if m, ok := mod.(AdminModule); ok {
			r.admin = insert(r.admin, entry[AdminModule]{m, pri})
		}
	}
}

// insert 保持按优先级稳定有序
func insert[M any](list []entry[M], e entry[M]) []entry[M] {
	i, _ := slices.BinarySearchFunc(list, e.pri+1, func(x entry[M], pri int) int { return cmp.Compare(x.pri, pri) })
	return slices.Insert(list, i, e)
}

func (r *Registry) MountAPI(g *gin.RouterGroup) {
	for _, e := range r.api {
		e.mod.MountAPI(g)
	}
}

func (r *Registry) MountAdmin(g *gin.RouterGroup) {
	for _, e := range r.admin {
		e.mod.MountAdmin(g)
	}
}
