// ABOUTME: vSphere client for environment discovery via govmomi
// ABOUTME: Builds a full Environment snapshot of clusters, hosts, and VMs

package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/find"
	"github.com/vmware/govmomi/object"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/types"
	"golang.org/x/sync/errgroup"

	"github.com/atlasplan/migration-planner/models"
)

// VSphereCredentials holds vCenter connection info
type VSphereCredentials struct {
	Host       string
	Username   string
	Password   string
	Datacenter string
	Insecure   bool
}

// VSphereClient wraps govmomi client for environment discovery
type VSphereClient struct {
	creds      VSphereCredentials
	client     *govmomi.Client
	finder     *find.Finder
	datacenter *object.Datacenter
}

// NewVSphereClient creates a new vSphere client
func NewVSphereClient(creds VSphereCredentials) *VSphereClient {
	return &VSphereClient{
		creds: creds,
	}
}

// Connect establishes connection to vCenter
func (v *VSphereClient) Connect(ctx context.Context) error {
	host := v.creds.Host
	if !strings.HasPrefix(host, "https://") && !strings.HasPrefix(host, "http://") {
		host = "https://" + host
	}

	u, err := url.Parse(host + "/sdk")
	if err != nil {
		return fmt.Errorf("invalid vCenter URL '%s': %w", v.creds.Host, err)
	}
	u.User = url.UserPassword(v.creds.Username, v.creds.Password)

	client, err := govmomi.NewClient(ctx, u, v.creds.Insecure)
	if err != nil {
		// Provide more specific error messages
		errStr := err.Error()
		if strings.Contains(errStr, "connection refused") {
			return fmt.Errorf("connection refused to vCenter at %s - verify the host is reachable", v.creds.Host)
		}
		if strings.Contains(errStr, "no such host") {
			return fmt.Errorf("cannot resolve vCenter hostname '%s' - verify DNS", v.creds.Host)
		}
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "Cannot complete login") {
			return fmt.Errorf("authentication failed - verify username and password")
		}
		if strings.Contains(errStr, "context deadline exceeded") || strings.Contains(errStr, "timeout") {
			return fmt.Errorf("connection timeout to vCenter at %s - check network connectivity", v.creds.Host)
		}
		if strings.Contains(errStr, "certificate") || strings.Contains(errStr, "x509") {
			return fmt.Errorf("SSL certificate error connecting to %s - try setting VSPHERE_INSECURE=true", v.creds.Host)
		}
		return fmt.Errorf("failed to connect to vCenter at %s: %w", v.creds.Host, err)
	}

	v.client = client
	v.finder = find.NewFinder(client.Client, true)

	dc, err := v.finder.Datacenter(ctx, v.creds.Datacenter)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			return fmt.Errorf("datacenter '%s' not found - verify the datacenter name", v.creds.Datacenter)
		}
		return fmt.Errorf("error accessing datacenter '%s': %w", v.creds.Datacenter, err)
	}
	v.datacenter = dc
	v.finder.SetDatacenter(dc)

	slog.Info("vSphere connected successfully")
	slog.Debug("vSphere connection details", "host", v.creds.Host, "datacenter", v.creds.Datacenter)
	return nil
}

// Disconnect closes the vCenter connection
func (v *VSphereClient) Disconnect(ctx context.Context) error {
	if v.client != nil {
		return v.client.Logout(ctx)
	}
	return nil
}

// IsConnected returns true if client has an active connection
func (v *VSphereClient) IsConnected() bool {
	return v.client != nil && v.client.Valid()
}

// DiscoverEnvironment collects the full cluster/host/VM inventory and builds
// an Environment snapshot for the planning engines. Clusters are collected
// concurrently; a failure on any cluster fails the discovery.
func (v *VSphereClient) DiscoverEnvironment(ctx context.Context) (*models.Environment, error) {
	clusterRefs, err := v.finder.ClusterComputeResourceList(ctx, "*")
	if err != nil {
		return nil, fmt.Errorf("listing clusters: %w", err)
	}

	// Each goroutine writes its own slice slot, so no locking is needed
	clusters := make([]models.Cluster, len(clusterRefs))

	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range clusterRefs {
		i, ref := i, ref
		g.Go(func() error {
			cluster, err := v.collectCluster(gctx, ref)
			if err != nil {
				return fmt.Errorf("collecting cluster %s: %w", ref.Name(), err)
			}
			clusters[i] = cluster
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	env := &models.Environment{
		ID:       uuid.New(),
		Name:     v.creds.Datacenter,
		ParsedAt: time.Now().UTC(),
		Clusters: clusters,
	}
	rollupEnvironment(env)

	slog.Info("environment discovery complete",
		"clusters", len(env.Clusters),
		"hosts", env.TotalHosts,
		"vms", env.TotalVMs)

	return env, nil
}

// collectCluster gathers one cluster's hosts and VMs and computes its metrics
func (v *VSphereClient) collectCluster(ctx context.Context, ref *object.ClusterComputeResource) (models.Cluster, error) {
	cluster := models.Cluster{Name: ref.Name()}

	var clusterMo mo.ClusterComputeResource
	if err := ref.Properties(ctx, ref.Reference(), []string{"host"}, &clusterMo); err != nil {
		return cluster, fmt.Errorf("getting cluster properties: %w", err)
	}

	for _, hostRef := range clusterMo.Host {
		host := object.NewHostSystem(v.client.Client, hostRef)
		info, vms, err := v.collectHost(ctx, host, ref.Name())
		if err != nil {
			return cluster, fmt.Errorf("collecting host: %w", err)
		}
		cluster.Hosts = append(cluster.Hosts, info)
		cluster.VMs = append(cluster.VMs, vms...)
	}

	rollupCluster(&cluster)
	return cluster, nil
}

// collectHost reads host hardware and the VMs running on it
func (v *VSphereClient) collectHost(ctx context.Context, host *object.HostSystem, clusterName string) (models.Host, []models.VirtualMachine, error) {
	var hostMo mo.HostSystem
	err := host.Properties(ctx, host.Reference(), []string{"summary", "runtime", "hardware", "vm"}, &hostMo)
	if err != nil {
		return models.Host{}, nil, fmt.Errorf("getting host properties: %w", err)
	}

	info := models.Host{
		Name:          host.Name(),
		ClusterName:   clusterName,
		TotalMemoryGB: int(hostMo.Summary.Hardware.MemorySize / (1024 * 1024 * 1024)),
		NumCPUCores:   int(hostMo.Summary.Hardware.NumCpuCores),
		CPUModel:      hostMo.Summary.Hardware.CpuModel,
		Vendor:        hostMo.Summary.Hardware.Vendor,
		Model:         hostMo.Summary.Hardware.Model,
		PowerState:    models.ParsePowerState(string(hostMo.Runtime.PowerState)),
		InMaintenance: hostMo.Runtime.InMaintenanceMode,
	}
	if hostMo.Hardware != nil {
		info.NumCPUSockets = int(hostMo.Hardware.CpuInfo.NumCpuPackages)
		if info.NumCPUSockets > 0 {
			info.CoresPerSocket = info.NumCPUCores / info.NumCPUSockets
		}
	}

	var vms []models.VirtualMachine
	for _, vmRef := range hostMo.Vm {
		vm := object.NewVirtualMachine(v.client.Client, vmRef)
		record, err := v.collectVM(ctx, vm, clusterName, host.Name())
		if err != nil {
			continue // Skip VMs we can't read
		}
		vms = append(vms, record)
	}

	return info, vms, nil
}

// collectVM reads a VM's configuration, disks, and tooling status
func (v *VSphereClient) collectVM(ctx context.Context, vm *object.VirtualMachine, clusterName, hostName string) (models.VirtualMachine, error) {
	var vmMo mo.VirtualMachine
	err := vm.Properties(ctx, vm.Reference(), []string{"config", "runtime", "summary", "guest"}, &vmMo)
	if err != nil {
		return models.VirtualMachine{}, err
	}

	record := models.VirtualMachine{
		Name:        vm.Name(),
		ClusterName: clusterName,
		HostName:    hostName,
		PowerState:  models.ParsePowerState(string(vmMo.Runtime.PowerState)),
	}

	if vmMo.Config != nil {
		record.NumVCPU = int(vmMo.Config.Hardware.NumCPU)
		record.MemoryGB = int(vmMo.Config.Hardware.MemoryMB) / 1024
		record.IsTemplate = vmMo.Config.Template
		record.GuestOS = vmMo.Config.GuestFullName
		record.Disks = collectDisks(vmMo.Config.Hardware.Device, vmMo.Summary.Storage)
	}
	if vmMo.Guest != nil {
		record.ToolsStatus = string(vmMo.Guest.ToolsStatus)
	}

	for _, d := range record.Disks {
		if d.IsRDM {
			record.SpecialFlags.HasRDM = true
			record.SpecialFlags.NeedsManualAttention = true
		}
	}
	// A powered-off non-template VM still holding allocation is a zombie
	// candidate; discovery marks it, analysis decides what to surface
	if record.PowerState == models.PoweredOff && !record.IsTemplate {
		record.SpecialFlags.IsZombie = true
	}

	return record, nil
}

// collectDisks walks the VM's virtual devices and maps each disk's
// provisioning mode and RDM backing. Consumed space comes from the storage
// summary spread proportionally across disks since vSphere only reports
// committed bytes per VM.
func collectDisks(devices []types.BaseVirtualDevice, storage *types.VirtualMachineStorageSummary) []models.VirtualDisk {
	var disks []models.VirtualDisk
	var totalProvisioned float64

	for _, device := range devices {
		disk, ok := device.(*types.VirtualDisk)
		if !ok {
			continue
		}

		d := models.VirtualDisk{
			ProvisionedGB:    float64(disk.CapacityInKB) / (1024 * 1024),
			ProvisioningType: models.ProvisioningUnknown,
		}
		if disk.DeviceInfo != nil {
			d.DiskLabel = disk.DeviceInfo.GetDescription().Label
		}

		switch backing := disk.Backing.(type) {
		case *types.VirtualDiskFlatVer2BackingInfo:
			if backing.ThinProvisioned != nil && *backing.ThinProvisioned {
				d.ProvisioningType = models.ProvisioningThin
			} else if backing.EagerlyScrub != nil && *backing.EagerlyScrub {
				d.ProvisioningType = models.ProvisioningThickEagerZeroed
			} else {
				d.ProvisioningType = models.ProvisioningThick
			}
		case *types.VirtualDiskRawDiskMappingVer1BackingInfo:
			d.IsRDM = true
		}

		totalProvisioned += d.ProvisionedGB
		disks = append(disks, d)
	}

	if storage != nil && totalProvisioned > 0 {
		committedGB := float64(storage.Committed) / (1024 * 1024 * 1024)
		for i := range disks {
			disks[i].ConsumedInGuestGB = committedGB * disks[i].ProvisionedGB / totalProvisioned
		}
	}

	return disks
}

// rollupCluster computes cluster metrics and health indicators from its
// hosts and VMs
func rollupCluster(cluster *models.Cluster) {
	m := &cluster.Metrics
	m.TotalHosts = len(cluster.Hosts)
	m.TotalVMs = len(cluster.VMs)

	for _, h := range cluster.Hosts {
		m.TotalPCPUCores += h.NumCPUCores
		m.TotalMemoryGB += h.TotalMemoryGB
	}

	for _, vm := range cluster.VMs {
		m.TotalVCPUs += vm.NumVCPU
		m.ProvisionedMemoryGB += float64(vm.MemoryGB)
		for _, d := range vm.Disks {
			m.TotalStorageGB += d.ProvisionedGB
			m.ConsumedStorageGB += d.ConsumedInGuestGB
		}

		if vm.SpecialFlags.IsZombie {
			cluster.HealthStatus.ZombieVMs = append(cluster.HealthStatus.ZombieVMs, vm.Name)
		}
		if vm.SpecialFlags.HasRDM {
			cluster.HealthStatus.RDMVMs = append(cluster.HealthStatus.RDMVMs, vm.Name)
		}
		if vm.ToolsStatus == "toolsOld" || vm.ToolsStatus == "toolsNotInstalled" {
			cluster.HealthStatus.OutdatedTools = append(cluster.HealthStatus.OutdatedTools, vm.Name)
		}
	}

	if m.TotalPCPUCores > 0 {
		m.CurrentVCPUPCPURatio = float64(m.TotalVCPUs) / float64(m.TotalPCPUCores)
	}
	if m.TotalMemoryGB > 0 {
		m.MemoryOvercommitRatio = m.ProvisionedMemoryGB / float64(m.TotalMemoryGB)
	}
}

// rollupEnvironment computes estate-wide summary metrics and translates
// per-cluster health indicators into health issues
func rollupEnvironment(env *models.Environment) {
	s := &env.SummaryMetrics
	s.HealthIssues = []models.HealthIssue{}

	for _, cluster := range env.Clusters {
		env.TotalHosts += len(cluster.Hosts)
		env.TotalVMs += len(cluster.VMs)
		s.TotalVCPUs += cluster.Metrics.TotalVCPUs
		s.TotalPCores += cluster.Metrics.TotalPCPUCores
		s.TotalProvisionedMemoryGB += cluster.Metrics.ProvisionedMemoryGB
		s.TotalProvisionedStorageGB += cluster.Metrics.TotalStorageGB
		s.TotalConsumedStorageGB += cluster.Metrics.ConsumedStorageGB

		for _, vmName := range cluster.HealthStatus.RDMVMs {
			s.HealthIssues = append(s.HealthIssues, models.HealthIssue{
				Severity:       models.SeverityWarning,
				Category:       models.CategoryRawDeviceMapping,
				Description:    fmt.Sprintf("VM '%s' uses raw device mappings", vmName),
				AffectedVM:     vmName,
				Recommendation: "Plan storage migration before moving this VM",
			})
		}
		for _, vmName := range cluster.HealthStatus.OutdatedTools {
			s.HealthIssues = append(s.HealthIssues, models.HealthIssue{
				Severity:       models.SeverityInfo,
				Category:       models.CategoryOutdatedTools,
				Description:    fmt.Sprintf("VM '%s' has outdated or missing VMware Tools", vmName),
				AffectedVM:     vmName,
				Recommendation: "Update VMware Tools before migration",
			})
		}
		for _, vmName := range cluster.HealthStatus.ZombieVMs {
			s.HealthIssues = append(s.HealthIssues, models.HealthIssue{
				Severity:       models.SeverityWarning,
				Category:       models.CategoryZombieVM,
				Description:    fmt.Sprintf("VM '%s' is powered off but still allocated", vmName),
				AffectedVM:     vmName,
				Recommendation: "Remove or power on if needed",
			})
		}
	}

	// Consumed memory is not directly observable without performance
	// counters; approximate with provisioned memory
	s.TotalConsumedMemoryGB = s.TotalProvisionedMemoryGB

	if s.TotalPCores > 0 {
		s.OverallVCPUPCPURatio = float64(s.TotalVCPUs) / float64(s.TotalPCores)
	}
}

// VSphereClientFromEnv creates a client from environment variables
func VSphereClientFromEnv(host, user, pass, datacenter string, insecure bool) *VSphereClient {
	return NewVSphereClient(VSphereCredentials{
		Host:       host,
		Username:   user,
		Password:   pass,
		Datacenter: datacenter,
		Insecure:   insecure,
	})
}

// GetClusterNames returns just the cluster names (useful for scoping a run)
func (v *VSphereClient) GetClusterNames(ctx context.Context) ([]string, error) {
	clusters, err := v.finder.ClusterComputeResourceList(ctx, "*")
	if err != nil {
		return nil, fmt.Errorf("listing clusters: %w", err)
	}

	names := make([]string, len(clusters))
	for i, c := range clusters {
		names[i] = c.Name()
	}
	return names, nil
}
