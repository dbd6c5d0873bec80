// 指示: miu200521358
// Package vrm はVRM/GLBのノード階層からリグを読み込む。メッシュは読まない。
package vrm

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/miu200521358/mu_retarget/pkg/domain/mmath"
	"github.com/miu200521358/mu_retarget/pkg/domain/model"
	"github.com/miu200521358/mu_retarget/pkg/shared/logging"
	"github.com/miu200521358/mu_retarget/pkg/shared/merr"
)

const (
	glbHeaderLength   = 12
	glbChunkHeadSize  = 8
	glbMagic          = 0x46546C67
	glbJSONChunkType  = 0x4E4F534A
	glbMinValidLength = glbHeaderLength + glbChunkHeadSize

	// leafTailRatio は子を持たないボーンの長さを親からの距離に対する比率で決める。
	leafTailRatio = 0.5
	// rootTailLength は親も子も無いボーンの長さ。
	rootTailLength = 0.1
)

// LoadProgressEventType はVRM読込進捗イベント種別を表す。
type LoadProgressEventType string

const (
	// LoadProgressEventTypeFileReadComplete はファイル読込完了イベントを表す。
	LoadProgressEventTypeFileReadComplete LoadProgressEventType = "file_read_complete"
	// LoadProgressEventTypeJsonParsed はJSON解析完了イベントを表す。
	LoadProgressEventTypeJsonParsed LoadProgressEventType = "json_parsed"
	// LoadProgressEventTypeCompleted はリグ構築完了イベントを表す。
	LoadProgressEventTypeCompleted LoadProgressEventType = "completed"
)

// LoadProgressEvent はVRM読込進捗イベントを表す。
type LoadProgressEvent struct {
	Type          LoadProgressEventType
	FileSizeBytes int
	NodeCount     int
	BoneCount     int
}

// VrmRepository はVRM/GLBからのリグ読み込みを表す。
type VrmRepository struct {
	loadProgressReporter func(LoadProgressEvent)
}

// NewVrmRepository はVrmRepositoryを生成する。
func NewVrmRepository() *VrmRepository {
	return &VrmRepository{}
}

// SetLoadProgressReporter はVRM読込進捗受信コールバックを設定する。
func (r *VrmRepository) SetLoadProgressReporter(reporter func(LoadProgressEvent)) {
	if r == nil {
		return
	}
	r.loadProgressReporter = reporter
}

// CanLoad は拡張子に応じて読み込み可否を判定する。
func (r *VrmRepository) CanLoad(path string) bool {
	ext := filepath.Ext(path)
	return strings.EqualFold(ext, ".vrm") || strings.EqualFold(ext, ".glb")
}

// InferName はパスから表示名を推定する。
func (r *VrmRepository) InferName(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	if name == "" {
		return "rig"
	}
	return name
}

// Load はVRM/GLBのスキンジョイントをボーンとしてリグを構築する。
// ヒューマノイド定義があればボーン名をヒューマノイド名に置き換える。
func (r *VrmRepository) Load(path string) (*model.Rig, error) {
	if !r.CanLoad(path) {
		return nil, merr.NewIoExtInvalid(path, nil)
	}
	loadTargetName := filepath.Base(path)
	logVrmInfo("VRM読込開始: file=%s", loadTargetName)

	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, merr.NewIoFileNotFound(path, err)
		}
		return nil, merr.NewIoParseFailed("VRMファイルの読み取りに失敗しました", err)
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeFileReadComplete,
		FileSizeBytes: len(b),
	})

	jsonChunk, err := parseGLBJSONChunk(b)
	if err != nil {
		return nil, err
	}
	doc := gltfDocument{}
	if err := json.Unmarshal(jsonChunk, &doc); err != nil {
		return nil, merr.NewIoParseFailed("VRM JSONチャンクの解析に失敗しました", err)
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeJsonParsed,
		FileSizeBytes: len(b),
		NodeCount:     len(doc.Nodes),
	})
	logVrmDebug("VRM読込ステップ: JSON解析完了 nodes=%d skins=%d", len(doc.Nodes), len(doc.Skins))

	parentIndexes, err := buildNodeParentIndexes(doc.Nodes)
	if err != nil {
		return nil, err
	}
	worldPositions, err := buildNodeWorldPositions(doc.Nodes, parentIndexes)
	if err != nil {
		return nil, err
	}
	humanoid, err := parseHumanoidNames(&doc)
	if err != nil {
		return nil, err
	}

	rig, err := buildRig(r.InferName(path), &doc, parentIndexes, worldPositions, humanoid)
	if err != nil {
		return nil, err
	}
	r.reportLoadProgress(LoadProgressEvent{
		Type:          LoadProgressEventTypeCompleted,
		FileSizeBytes: len(b),
		NodeCount:     len(doc.Nodes),
		BoneCount:     rig.Bones.Len(),
	})
	logVrmInfo("VRM読込完了: file=%s bones=%d humanoid=%d", loadTargetName, rig.Bones.Len(), len(humanoid))
	return rig, nil
}

// reportLoadProgress は読込進捗イベントを通知する。
func (r *VrmRepository) reportLoadProgress(event LoadProgressEvent) {
	if r == nil || r.loadProgressReporter == nil {
		return
	}
	r.loadProgressReporter(event)
}

// logVrmInfo はVRM読込のINFOログを出力する。
func logVrmInfo(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Info(format, params...)
}

func logVrmDebug(format string, params ...any) {
	logger := logging.DefaultLogger()
	if logger == nil {
		return
	}
	logger.Debug(format, params...)
}

// gltfDocument はglTFのうちリグ構築に使う要素を表す。
type gltfDocument struct {
	Asset          gltfAsset                  `json:"asset"`
	Skins          []gltfSkin                 `json:"skins"`
	ExtensionsUsed []string                   `json:"extensionsUsed"`
	Nodes          []gltfNode                 `json:"nodes"`
	Extensions     map[string]json.RawMessage `json:"extensions"`
}

// gltfAsset はglTFのasset要素を表す。
type gltfAsset struct {
	Version   string `json:"version"`
	Generator string `json:"generator"`
}

// gltfNode はglTFのnode要素を表す。
type gltfNode struct {
	Name        string    `json:"name"`
	Mesh        *int      `json:"mesh"`
	Children    []int     `json:"children"`
	Matrix      []float64 `json:"matrix"`
	Translation []float64 `json:"translation"`
	Rotation    []float64 `json:"rotation"`
	Scale       []float64 `json:"scale"`
}

// gltfSkin はglTFのskin要素を表す。
type gltfSkin struct {
	Joints []int `json:"joints"`
}

// vrm0Extension はVRM0のextensions.VRMを表す。
type vrm0Extension struct {
	Humanoid struct {
		HumanBones []struct {
			Bone string `json:"bone"`
			Node int    `json:"node"`
		} `json:"humanBones"`
	} `json:"humanoid"`
}

// vrm1Extension はVRM1のextensions.VRMC_vrmを表す。
type vrm1Extension struct {
	Humanoid struct {
		HumanBones map[string]struct {
			Node *int `json:"node"`
		} `json:"humanBones"`
	} `json:"humanoid"`
}

// parseGLBJSONChunk はGLBバイナリからJSONチャンクを取り出す。
func parseGLBJSONChunk(b []byte) ([]byte, error) {
	if len(b) < glbMinValidLength {
		return nil, merr.NewIoParseFailed("GLBヘッダが不足しています", nil)
	}
	if binary.LittleEndian.Uint32(b[0:4]) != glbMagic {
		return nil, merr.NewIoParseFailed("GLBマジックが不正です", nil)
	}
	if version := binary.LittleEndian.Uint32(b[4:8]); version != 2 {
		return nil, merr.NewIoParseFailed(fmt.Sprintf("GLBバージョンが未対応です: %d", version), nil)
	}
	if totalLength := binary.LittleEndian.Uint32(b[8:12]); totalLength > uint32(len(b)) {
		return nil, merr.NewIoParseFailed("GLB全体長が不正です", nil)
	}

	offset := glbHeaderLength
	for offset+glbChunkHeadSize <= len(b) {
		chunkLength := int(binary.LittleEndian.Uint32(b[offset : offset+4]))
		chunkType := binary.LittleEndian.Uint32(b[offset+4 : offset+8])
		chunkStart := offset + glbChunkHeadSize
		chunkEnd := chunkStart + chunkLength
		if chunkLength < 0 || chunkEnd > len(b) {
			return nil, merr.NewIoParseFailed("GLBチャンク長が不正です", nil)
		}
		if chunkType == glbJSONChunkType {
			return b[chunkStart:chunkEnd], nil
		}
		offset = chunkEnd
	}
	return nil, merr.NewIoParseFailed("GLB JSONチャンクが見つかりません", nil)
}

// buildNodeParentIndexes はnode配列から親インデックス配列を生成する。
func buildNodeParentIndexes(nodes []gltfNode) ([]int, error) {
	parentIndexes := make([]int, len(nodes))
	for i := range parentIndexes {
		parentIndexes[i] = -1
	}
	for parentIndex, node := range nodes {
		for _, childIndex := range node.Children {
			if childIndex < 0 || childIndex >= len(nodes) {
				return nil, merr.NewIoParseFailed(fmt.Sprintf("node.children のindexが不正です: %d", childIndex), nil)
			}
			if parentIndexes[childIndex] == -1 {
				parentIndexes[childIndex] = parentIndex
			}
		}
	}
	return parentIndexes, nil
}

// buildNodeWorldPositions はnodeのローカル変換からワールド座標を算出する。
func buildNodeWorldPositions(nodes []gltfNode, parents []int) ([]mmath.Vec3, error) {
	worldMats := make([]mgl64.Mat4, len(nodes))
	state := make([]int, len(nodes))
	for i := range nodes {
		if err := resolveNodeWorldMatrix(nodes, parents, i, state, worldMats); err != nil {
			return nil, err
		}
	}
	positions := make([]mmath.Vec3, len(nodes))
	for i, mat := range worldMats {
		t := mat.Col(3)
		positions[i] = mmath.NewVec3(t[0], t[1], t[2])
	}
	return positions, nil
}

// resolveNodeWorldMatrix はnodeのワールド行列を再帰的に解決する。
func resolveNodeWorldMatrix(nodes []gltfNode, parents []int, nodeIndex int, state []int, worldMats []mgl64.Mat4) error {
	if state[nodeIndex] == 2 {
		return nil
	}
	if state[nodeIndex] == 1 {
		return merr.NewIoParseFailed(fmt.Sprintf("node親子関係に循環があります: %d", nodeIndex), nil)
	}
	state[nodeIndex] = 1
	local, err := nodeLocalMatrix(nodes[nodeIndex])
	if err != nil {
		return err
	}
	if parentIndex := parents[nodeIndex]; parentIndex >= 0 {
		if err := resolveNodeWorldMatrix(nodes, parents, parentIndex, state, worldMats); err != nil {
			return err
		}
		worldMats[nodeIndex] = worldMats[parentIndex].Mul4(local)
	} else {
		worldMats[nodeIndex] = local
	}
	state[nodeIndex] = 2
	return nil
}

// nodeLocalMatrix はnode要素からローカル行列を生成する。matrixは列優先。
func nodeLocalMatrix(node gltfNode) (mgl64.Mat4, error) {
	if len(node.Matrix) > 0 {
		if len(node.Matrix) != 16 {
			return mgl64.Ident4(), merr.NewIoParseFailed(fmt.Sprintf("node.matrix の要素数が不正です: %d", len(node.Matrix)), nil)
		}
		mat := mgl64.Mat4{}
		copy(mat[:], node.Matrix)
		return mat, nil
	}

	translation, err := parseVec3(node.Translation, mgl64.Vec3{}, "node.translation")
	if err != nil {
		return mgl64.Ident4(), err
	}
	scale, err := parseVec3(node.Scale, mgl64.Vec3{1, 1, 1}, "node.scale")
	if err != nil {
		return mgl64.Ident4(), err
	}
	rotation := mgl64.QuatIdent()
	if len(node.Rotation) > 0 {
		if len(node.Rotation) != 4 {
			return mgl64.Ident4(), merr.NewIoParseFailed(fmt.Sprintf("node.rotation の要素数が不正です: %d", len(node.Rotation)), nil)
		}
		// glTFは x, y, z, w の順。
		rotation = mgl64.Quat{W: node.Rotation[3], V: mgl64.Vec3{node.Rotation[0], node.Rotation[1], node.Rotation[2]}}.Normalize()
	}

	return mgl64.Translate3D(translation[0], translation[1], translation[2]).
		Mul4(rotation.Mat4()).
		Mul4(mgl64.Scale3D(scale[0], scale[1], scale[2])), nil
}

// parseVec3 はスライスをベクトルへ変換する。
func parseVec3(values []float64, defaultValue mgl64.Vec3, label string) (mgl64.Vec3, error) {
	if len(values) == 0 {
		return defaultValue, nil
	}
	if len(values) != 3 {
		return mgl64.Vec3{}, merr.NewIoParseFailed(fmt.Sprintf("%s の要素数が不正です: %d", label, len(values)), nil)
	}
	return mgl64.Vec3{values[0], values[1], values[2]}, nil
}

// parseHumanoidNames はVRM拡張からnode indexとヒューマノイド名の対応を返す。
// VRM0/1 が同居する場合はVRM1を優先する。拡張が無ければ空。
func parseHumanoidNames(doc *gltfDocument) (map[int]string, error) {
	names := map[int]string{}
	if raw, ok := doc.Extensions["VRMC_vrm"]; ok {
		ext := vrm1Extension{}
		if err := json.Unmarshal(raw, &ext); err != nil {
			return nil, merr.NewIoParseFailed("VRM1拡張のJSON解析に失敗しました", err)
		}
		for bone, ref := range ext.Humanoid.HumanBones {
			if ref.Node != nil {
				names[*ref.Node] = bone
			}
		}
		return names, nil
	}
	if raw, ok := doc.Extensions["VRM"]; ok {
		ext := vrm0Extension{}
		if err := json.Unmarshal(raw, &ext); err != nil {
			return nil, merr.NewIoParseFailed("VRM0拡張のJSON解析に失敗しました", err)
		}
		for _, bone := range ext.Humanoid.HumanBones {
			names[bone.Node] = bone.Bone
		}
	}
	return names, nil
}

// jointNodes はボーンにするnodeを返す。スキンが無ければメッシュを持たない全node。
func jointNodes(doc *gltfDocument) map[int]bool {
	joints := map[int]bool{}
	for _, skin := range doc.Skins {
		for _, joint := range skin.Joints {
			if joint >= 0 && joint < len(doc.Nodes) {
				joints[joint] = true
			}
		}
	}
	if len(joints) > 0 {
		return joints
	}
	for i, node := range doc.Nodes {
		if node.Mesh == nil {
			joints[i] = true
		}
	}
	return joints
}

// buildRig はnode階層からリグを構築する。親は最も近いボーン化された祖先。
func buildRig(
	name string,
	doc *gltfDocument,
	parents []int,
	worldPositions []mmath.Vec3,
	humanoid map[int]string,
) (*model.Rig, error) {
	joints := jointNodes(doc)
	// ヒューマノイドに割り当てられたnodeはスキン外でも残す。
	for node := range humanoid {
		if node >= 0 && node < len(doc.Nodes) {
			joints[node] = true
		}
	}
	boneParent := func(node int) int {
		for p := parents[node]; p >= 0; p = parents[p] {
			if joints[p] {
				return p
			}
		}
		return -1
	}
	children := map[int][]int{}
	for node := range joints {
		children[boneParent(node)] = append(children[boneParent(node)], node)
	}
	for key := range children {
		sort.Ints(children[key])
	}

	rig := model.NewRig(name)
	nodeToBone := map[int]*model.Bone{}
	order := make([]int, 0, len(joints))
	stack := append([]int(nil), children[-1]...)
	for i, j := 0, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		order = append(order, node)
		kids := children[node]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}

	for _, node := range order {
		head := worldPositions[node]
		bone := model.NewBone(rig.Bones.UniqueName(resolveNodeBoneName(node, doc.Nodes[node].Name, humanoid)), head, head)
		parentName := ""
		if p := boneParent(node); p >= 0 {
			parentName = nodeToBone[p].Name
		}
		if err := rig.AddBone(bone, parentName); err != nil {
			return nil, merr.NewIoParseFailed("VRMボーンの追加に失敗しました", err)
		}
		nodeToBone[node] = bone
	}

	for _, node := range order {
		bone := nodeToBone[node]
		var parentBone *model.Bone
		if p := boneParent(node); p >= 0 {
			parentBone = nodeToBone[p]
		}
		if tail, ok := firstDistinctChild(bone, children[node], nodeToBone); ok {
			bone.Tail = tail
			continue
		}
		bone.Tail = bone.Head.Added(generateTailOffset(bone, parentBone))
	}
	for _, node := range order {
		bone := nodeToBone[node]
		if p := boneParent(node); p >= 0 && nodeToBone[p].Tail.NearEquals(bone.Head, 1e-9) {
			bone.BoneFlag |= model.BONE_FLAG_CONNECTED
		}
	}
	return rig, nil
}

// resolveNodeBoneName はヒューマノイド名、node名、連番の順でボーン名を決定する。
func resolveNodeBoneName(nodeIndex int, nodeName string, humanoid map[int]string) string {
	if name, ok := humanoid[nodeIndex]; ok && strings.TrimSpace(name) != "" {
		return name
	}
	trimmed := strings.TrimSpace(nodeName)
	if trimmed != "" {
		return trimmed
	}
	return fmt.Sprintf("node_%03d", nodeIndex)
}

// firstDistinctChild は根元位置が自身と異なる最初の子ボーンの根元を返す。
func firstDistinctChild(bone *model.Bone, children []int, nodeToBone map[int]*model.Bone) (mmath.Vec3, bool) {
	for _, child := range children {
		head := nodeToBone[child].Head
		if !head.NearEquals(bone.Head, 1e-9) {
			return head, true
		}
	}
	return mmath.Vec3{}, false
}

// generateTailOffset は子無しボーン向けに親からの向きでテールオフセットを算出する。
func generateTailOffset(bone *model.Bone, parentBone *model.Bone) mmath.Vec3 {
	fallback := mmath.NewVec3(0, rootTailLength, 0)
	if parentBone == nil {
		return fallback
	}
	direction := bone.Head.Subed(parentBone.Head)
	if direction.IsZero() {
		return fallback
	}
	return direction.MuledScalar(leafTailRatio)
}
